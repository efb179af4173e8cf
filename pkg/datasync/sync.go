// Package datasync orchestrates the download of a UFS-AQM dataset: it
// resolves a dataset request into concrete S3 objects, expands listing
// prefixes, then hands the plan to the transfer scheduler.
package datasync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/cycle"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/datasync/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/manifest"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage/localfs"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage/sthree"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/transfer"
	transferstatus "github.com/NOAA-EPIC/AQM-Eval/pkg/transfer/status"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultAWSRegion hosts the public NOAA open data buckets.
const DefaultAWSRegion = "us-east-1"

// Sync is a runnable sync job for one dataset request.
//
// Use New to build it: construction resolves the dataset descriptor and
// validates the cycle window, so a Sync in hand is always runnable.
type Sync struct {
	req model.DatasetRequest
	d   *manifest.Descriptor
	rng *cycle.Range

	dstPath  string
	ownsDest bool
	fs       afero.Fs
	dst      storage.Store
	src      storage.Store

	maxConcurrent int
	maxRetries    uint64
	dryRun        bool
	region        string
	endpoint      string

	l *zap.Logger
}

// New resolves a dataset request into a sync job.
//
// The destination defaults to a local directory rooted at
// DestinationPath, the source to anonymous access on the S3 bucket the
// dataset descriptor names.
func New(req model.DatasetRequest, opts ...Option) (*Sync, error) {
	s := &Sync{
		req:           req,
		fs:            afero.NewOsFs(),
		maxConcurrent: transfer.DefaultMaxConcurrent,
		region:        DefaultAWSRegion,
		l:             zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}

	if s.maxConcurrent < 1 {
		return nil, transferstatus.ErrInvalidConfig.Wrap(
			fmt.Errorf("max concurrent transfers must be at least 1, got %d", s.maxConcurrent))
	}

	d, err := manifest.Lookup(req.Kind, req.UseCase)
	if err != nil {
		return nil, err
	}
	s.d = d

	if d.Window != nil {
		// use case presets fill only the bounds the request leaves unset
		if s.req.FirstCycle.IsZero() {
			s.req.FirstCycle = d.Window.First
		}
		if s.req.LastCycle.IsZero() {
			s.req.LastCycle = d.Window.Last
		}
	}
	if d.Cyclic() {
		rng, err := cycle.New(s.req.FirstCycle, s.req.LastCycle, cycle.Snippet(s.req.Snippet))
		if err != nil {
			return nil, err
		}
		s.rng = rng
	}

	if s.dst == nil {
		if s.dstPath == "" {
			return nil, status.ErrInvalidDestination.Wrap(
				fmt.Errorf("a destination directory is required"))
		}
		s.dst = localfs.New(afero.NewBasePathFs(s.fs, s.dstPath))
		s.ownsDest = true
	}

	s.l = s.l.With(
		zap.String("run_id", ksuid.New().String()),
		zap.String("kind", string(req.Kind)),
		zap.String("use_case", string(req.UseCase)),
	)

	if s.src == nil {
		cfg := aws.NewConfig().WithRegion(s.region)
		if s.endpoint != "" {
			cfg = cfg.WithEndpoint(s.endpoint).WithS3ForcePathStyle(true)
		}
		s.src = storage.Instrument(s.l, sthree.New(
			sthree.Bucket(d.Bucket),
			sthree.Anonymous(),
			sthree.AWSConfig(cfg),
		))
	}

	return s, nil
}

// Plan resolves the request into the list of objects to transfer.
//
// The plan is deterministic: objects come out in cycle order, then in
// descriptor entry order, with expanded listings in key order. Each
// destination path appears at most once.
func (s *Sync) Plan(ctx context.Context) ([]model.RemoteObject, error) {
	var objects []model.RemoteObject
	if s.rng != nil {
		err := s.rng.Each(func(cyc model.ForecastCycle) error {
			objects = append(objects, s.d.Resolve(s.req, cyc)...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		objects = s.d.Resolve(s.req, model.ForecastCycle{})
	}

	expanded, err := s.expand(ctx, objects)
	if err != nil {
		return nil, err
	}

	plan := dedupe(expanded)
	s.l.Debug("plan resolved",
		zap.Int("cycles", s.cycleCount()),
		zap.Int("objects", len(plan)),
	)
	return plan, nil
}

func (s *Sync) cycleCount() int {
	if s.rng == nil {
		return 0
	}
	return s.rng.Count()
}

// expand replaces every listing prefix with the objects below it,
// keeping single objects as they are. Listings run concurrently but
// the output preserves the plan order.
func (s *Sync) expand(ctx context.Context, objects []model.RemoteObject) ([]model.RemoteObject, error) {
	expanded := make([][]model.RemoteObject, len(objects))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrent)
	for i := range objects {
		if !objects[i].Prefix {
			expanded[i] = objects[i : i+1]
			continue
		}
		i := i
		group.Go(func() error {
			listed, err := s.expandPrefix(gctx, objects[i])
			if err != nil {
				return err
			}
			expanded[i] = listed
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.RemoteObject, 0, len(objects))
	for _, listed := range expanded {
		out = append(out, listed...)
	}
	return out, nil
}

// expandPrefix pages through the keys below one prefix and retains
// those matching the entry filter.
func (s *Sync) expandPrefix(ctx context.Context, obj model.RemoteObject) ([]model.RemoteObject, error) {
	var (
		listed []model.RemoteObject
		token  string
	)
	for {
		page, next, err := s.src.KeysPrefix(ctx, token, obj.Key, storage.PageSize)
		if err != nil {
			return nil, err
		}
		for _, info := range page {
			if !manifest.Match(obj.Filter, strings.TrimPrefix(info.Key, obj.Key)) {
				continue
			}
			listed = append(listed, model.RemoteObject{
				Key:     info.Key,
				RelPath: s.d.RelPath(info.Key),
				Size:    info.Size,
				ETag:    info.ETag,
			})
		}
		if next == "" {
			break
		}
		token = next
	}
	if len(listed) == 0 {
		s.l.Warn("no objects under prefix",
			zap.String("prefix", obj.Key),
			zap.String("filter", obj.Filter),
		)
	}
	return listed, nil
}

// dedupe drops later objects resolving to a destination path already
// taken. A shifted forecast hour walk can land on hours a dataset also
// lists explicitly, so duplicates are a normal occurrence.
func dedupe(objects []model.RemoteObject) []model.RemoteObject {
	seen := make(map[string]struct{}, len(objects))
	deduped := objects[:0]
	for _, obj := range objects {
		if _, ok := seen[obj.RelPath]; ok {
			continue
		}
		seen[obj.RelPath] = struct{}{}
		deduped = append(deduped, obj)
	}
	return deduped
}

// Run plans and executes the whole sync job.
//
// Failed transfers do not abort the run: the returned result accounts
// for every task, and a run with failures reports ErrPartialJobFailure.
// On cancellation Run returns the context error and the partial result.
func (s *Sync) Run(ctx context.Context) (model.SyncResult, error) {
	objects, err := s.Plan(ctx)
	if err != nil {
		return model.SyncResult{}, err
	}

	if s.ownsDest && !s.dryRun {
		if err := s.fs.MkdirAll(s.dstPath, 0700); err != nil {
			return model.SyncResult{}, status.ErrInvalidDestination.Wrap(err)
		}
	}

	s.l.Info("starting sync",
		zap.String("bucket", s.d.Bucket),
		zap.Int("tasks", len(objects)),
		zap.Int("max_concurrent", s.maxConcurrent),
		zap.Bool("dry_run", s.dryRun),
	)

	result, err := transfer.New(s.src, s.dst,
		transfer.MaxConcurrent(s.maxConcurrent),
		transfer.MaxRetries(s.maxRetries),
		transfer.DryRun(s.dryRun),
		transfer.Logger(s.l),
	).Run(ctx, objects)

	for i := range result.Failures {
		result.Failures[i].Dest = filepath.Join(s.dstPath, filepath.FromSlash(result.Failures[i].Dest))
	}

	s.l.Info("sync finished",
		zap.Int("completed", result.Completed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int64("bytes", result.Bytes),
		zap.Duration("took", result.Duration),
	)

	if err != nil {
		return result, err
	}
	if result.Failed > 0 {
		return result, status.ErrPartialJobFailure.Wrap(
			fmt.Errorf("%d of %d transfers failed", result.Failed, result.TaskCount()))
	}
	return result, nil
}
