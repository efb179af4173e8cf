// Package sthree implements the Store interface on AWS S3.
//
// The public NOAA buckets this tool mirrors do not require credentials,
// so the store supports anonymous access next to the usual credential
// chain.
package sthree

import (
	"context"
	"io"
	"strings"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/errors"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage/status"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Option configures the S3 backed store.
type Option func(*s3FS)

// Bucket selects the bucket all keys are relative to.
func Bucket(bucket string) Option {
	return func(fs *s3FS) {
		fs.bucket = bucket
	}
}

// AWSConfig overrides the default AWS client configuration,
// e.g. to point at a region or at a non-AWS endpoint.
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// Anonymous disables request signing, like aws s3 --no-sign-request.
func Anonymous() Option {
	return func(fs *s3FS) {
		fs.anonymous = true
	}
}

// New creates an S3 backed storage model.
func New(option Option, options ...Option) storage.Store {
	fs := new(s3FS)
	option(fs)
	for _, apply := range options {
		apply(fs)
	}

	if fs.awsConfig == nil {
		fs.awsConfig = aws.NewConfig()
	}
	if fs.anonymous {
		fs.awsConfig = fs.awsConfig.WithCredentials(credentials.AnonymousCredentials)
	}
	fs.s3 = s3.New(session.Must(session.NewSession(fs.awsConfig)))
	fs.uploader = s3manager.NewUploaderWithClient(fs.s3)
	return fs
}

type s3FS struct {
	bucket    string
	awsConfig *aws.Config
	anonymous bool
	s3        *s3.S3
	uploader  *s3manager.Uploader
}

func (s *s3FS) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.Head(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, status.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *s3FS) Head(ctx context.Context, key string) (storage.ObjectInfo, error) {
	out, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return storage.ObjectInfo{}, toSentinelErrors(err)
	}
	return storage.ObjectInfo{
		Key:  key,
		Size: aws.Int64Value(out.ContentLength),
		ETag: strings.Trim(aws.StringValue(out.ETag), `"`),
	}, nil
}

func (s *s3FS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return obj.Body, nil
}

func (s *s3FS) Put(ctx context.Context, key string, rdr io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   rdr,
	})
	return toSentinelErrors(err)
}

// KeysPrefix returns one page of the bucket listing under prefix.
// Directory placeholder keys (trailing slash) are filtered out.
func (s *s3FS) KeysPrefix(ctx context.Context, token, prefix string, count int) ([]storage.ObjectInfo, string, error) {
	if count <= 0 || count > storage.PageSize {
		count = storage.PageSize
	}
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(int64(count)),
	}
	if token != "" {
		in.ContinuationToken = aws.String(token)
	}

	out, err := s.s3.ListObjectsV2WithContext(ctx, in)
	if err != nil {
		return nil, "", toSentinelErrors(err)
	}

	objects := make([]storage.ObjectInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.StringValue(obj.Key)
		if key == "" || strings.HasSuffix(key, "/") {
			continue
		}
		objects = append(objects, storage.ObjectInfo{
			Key:  key,
			Size: aws.Int64Value(obj.Size),
			ETag: strings.Trim(aws.StringValue(obj.ETag), `"`),
		})
	}
	return objects, aws.StringValue(out.NextContinuationToken), nil
}

func (s *s3FS) String() string {
	return "s3@" + s.bucket
}
