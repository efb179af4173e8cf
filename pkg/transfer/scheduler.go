// Package transfer copies remote objects to a destination store with a
// bounded number of in-flight transfers.
//
// The scheduler never gives up on a job because a single object failed:
// every submitted task runs to an outcome, and the failures come back in
// submission order on the job result.
package transfer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/errors"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	storagestatus "github.com/NOAA-EPIC/AQM-Eval/pkg/storage/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/transfer/status"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultMaxConcurrent is the number of simultaneous transfers when the
// caller does not set one. It matches the AWS CLI default.
const DefaultMaxConcurrent = 5

// Option modifies the scheduler settings.
type Option func(*Scheduler)

// MaxConcurrent caps the number of simultaneous transfers.
func MaxConcurrent(n int) Option {
	return func(s *Scheduler) {
		s.maxConcurrent = n
	}
}

// DryRun reports what a run would do without touching either store.
func DryRun(enabled bool) Option {
	return func(s *Scheduler) {
		s.dryRun = enabled
	}
}

// MaxRetries enables up to n retries with exponential backoff on
// transient transfer errors. Zero, the default, fails fast.
func MaxRetries(n uint64) Option {
	return func(s *Scheduler) {
		s.maxRetries = n
	}
}

// Logger sets a zap logger for per task reporting.
func Logger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.l = l
		}
	}
}

// Scheduler moves objects from a source store to a destination store.
type Scheduler struct {
	src           storage.Store
	dst           storage.Store
	maxConcurrent int
	maxRetries    uint64
	dryRun        bool
	l             *zap.Logger
}

// New builds a scheduler copying from src to dst.
func New(src, dst storage.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:           src,
		dst:           dst,
		maxConcurrent: DefaultMaxConcurrent,
		l:             zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// task is the mutable per object record of a run. Each task is written
// by exactly one goroutine, and only read back after the run drained.
// States move forward only: pending, in-flight, then one of completed,
// skipped or failed.
type task struct {
	obj    model.RemoteObject
	state  model.TransferState
	bytes  int64
	reason string
}

// Run transfers the given objects and reports per job totals.
//
// Objects must be concrete keys: prefixes are expanded by the planner
// before submission. Tasks are admitted in slice order through a
// counting gate sized at MaxConcurrent, so no more than that many
// transfers are in flight at any instant. A failed task never stops the
// others; its reason is recorded and the job carries on.
//
// On cancellation, admission stops, in-flight tasks wind down, and the
// partial result is returned together with the context error.
func (s *Scheduler) Run(ctx context.Context, objects []model.RemoteObject) (model.SyncResult, error) {
	if s.maxConcurrent < 1 {
		return model.SyncResult{}, status.ErrInvalidConfig.Wrap(
			fmt.Errorf("max concurrent transfers must be at least 1, got %d", s.maxConcurrent))
	}

	start := time.Now()
	tasks := make([]task, len(objects))
	for i, obj := range objects {
		tasks[i] = task{obj: obj, state: model.TransferPending}
	}

	if s.dryRun {
		s.rehearse(tasks)
		return s.report(start, tasks), nil
	}

	concurrencyControl := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

admission:
	for i := range tasks {
		// the gate select below picks at random when a slot and the
		// cancellation are both ready, so check cancellation first
		select {
		case <-ctx.Done():
			break admission
		default:
		}
		select {
		case concurrencyControl <- struct{}{}:
		case <-ctx.Done():
			break admission
		}
		wg.Add(1)
		go func(t *task) {
			defer func() {
				<-concurrencyControl
			}()
			defer wg.Done()
			t.state = model.TransferInflight
			s.transfer(ctx, t)
		}(&tasks[i])
	}
	wg.Wait()

	result := s.report(start, tasks)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// rehearse settles the tasks of a dry run. It performs no calls on
// either store: every submitted task is reported as a would-be transfer.
func (s *Scheduler) rehearse(tasks []task) {
	for i := range tasks {
		s.l.Info("would transfer",
			zap.String("key", tasks[i].obj.Key),
			zap.String("dest", tasks[i].obj.RelPath),
		)
		tasks[i].state = model.TransferCompleted
	}
}

func (s *Scheduler) report(start time.Time, tasks []task) model.SyncResult {
	result := model.SyncResult{
		DryRun:   s.dryRun,
		Failures: make([]model.TaskFailure, 0, len(tasks)),
	}
	for i := range tasks {
		switch tasks[i].state {
		case model.TransferCompleted:
			result.Completed++
			result.Bytes += tasks[i].bytes
		case model.TransferSkipped:
			result.Skipped++
		case model.TransferFailed:
			result.Failed++
			result.Failures = append(result.Failures, model.TaskFailure{
				Key:    tasks[i].obj.Key,
				Dest:   tasks[i].obj.RelPath,
				Reason: tasks[i].reason,
			})
		default:
			// never admitted: the run was cancelled first
		}
	}
	result.Duration = time.Since(start)
	return result
}

func (s *Scheduler) transfer(ctx context.Context, t *task) {
	skip, err := s.shouldSkip(ctx, t.obj)
	if err != nil {
		s.l.Warn("cannot stat destination",
			zap.String("dest", t.obj.RelPath),
			zap.Error(err),
		)
		t.state, t.reason = model.TransferFailed, reasonOf(err)
		return
	}
	if skip {
		s.l.Debug("skipping present object",
			zap.String("key", t.obj.Key),
			zap.String("dest", t.obj.RelPath),
		)
		t.state = model.TransferSkipped
		return
	}

	copyOnce := func() error {
		n, cerr := s.copyObject(ctx, t.obj)
		if cerr != nil {
			return cerr
		}
		t.bytes = n
		return nil
	}

	if s.maxRetries > 0 {
		err = backoff.Retry(func() error {
			cerr := copyOnce()
			if cerr != nil && errors.Is(cerr, storagestatus.ErrNotFound) {
				// a missing object will not appear on retry
				return backoff.Permanent(cerr)
			}
			return cerr
		}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx))
	} else {
		err = copyOnce()
	}
	if err != nil {
		s.l.Warn("transfer failed",
			zap.String("key", t.obj.Key),
			zap.Error(err),
		)
		t.state, t.reason = model.TransferFailed, reasonOf(err)
		return
	}

	s.l.Debug("transferred",
		zap.String("key", t.obj.Key),
		zap.String("dest", t.obj.RelPath),
		zap.Int64("bytes", t.bytes),
	)
	t.state = model.TransferCompleted
}

// shouldSkip decides whether the destination already holds the object.
// A size from a bucket listing is compared when known; otherwise bare
// existence wins, so interrupted jobs resume without re-downloading.
func (s *Scheduler) shouldSkip(ctx context.Context, obj model.RemoteObject) (bool, error) {
	info, err := s.dst.Head(ctx, obj.RelPath)
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if obj.Size >= 0 && info.Size != obj.Size {
		return false, nil
	}
	return true, nil
}

func (s *Scheduler) copyObject(ctx context.Context, obj model.RemoteObject) (int64, error) {
	rdr, err := s.src.Get(ctx, obj.Key)
	if err != nil {
		return 0, err
	}
	defer rdr.Close()

	counter := &countingReader{r: rdr}
	if err := s.dst.Put(ctx, obj.RelPath, counter); err != nil {
		return 0, err
	}
	return counter.n, nil
}

func reasonOf(err error) string {
	if errors.Is(err, storagestatus.ErrNotFound) {
		return storagestatus.ErrNotFound.Error()
	}
	return err.Error()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
