package datasync

import (
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"go.uber.org/zap"
)

// Option alters the way a sync job is built.
type Option func(*Sync)

// DestinationPath roots the downloaded tree at path. The directory is
// created on the first run that actually writes.
func DestinationPath(path string) Option {
	return func(s *Sync) {
		s.dstPath = path
	}
}

// DestinationStore injects a destination store, bypassing the local
// file system default rooted at DestinationPath.
func DestinationStore(store storage.Store) Option {
	return func(s *Sync) {
		s.dst = store
	}
}

// SourceStore injects a source store, bypassing the S3 bucket the
// dataset descriptor names. Tests use it to run against fakes.
func SourceStore(store storage.Store) Option {
	return func(s *Sync) {
		s.src = store
	}
}

// MaxConcurrent caps simultaneous transfers and prefix listings.
func MaxConcurrent(n int) Option {
	return func(s *Sync) {
		s.maxConcurrent = n
	}
}

// MaxRetries enables up to n retries with exponential backoff for
// transient per-object failures. Zero disables retries.
func MaxRetries(n uint64) Option {
	return func(s *Sync) {
		s.maxRetries = n
	}
}

// DryRun resolves and reports the plan without touching any store.
func DryRun(enabled bool) Option {
	return func(s *Sync) {
		s.dryRun = enabled
	}
}

// Logger sets the logger for the job.
func Logger(l *zap.Logger) Option {
	return func(s *Sync) {
		if l != nil {
			s.l = l
		}
	}
}

// AWSRegion overrides the region used to reach the source bucket.
func AWSRegion(region string) Option {
	return func(s *Sync) {
		if region != "" {
			s.region = region
		}
	}
}

// Endpoint points the S3 client at an alternate endpoint, e.g. a local
// minio, and forces path style addressing.
func Endpoint(endpoint string) Option {
	return func(s *Sync) {
		s.endpoint = endpoint
	}
}
