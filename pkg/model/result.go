package model

import "time"

// TaskFailure records one failed transfer with its reason.
type TaskFailure struct {
	Key    string `json:"key" yaml:"key"`
	Dest   string `json:"dest" yaml:"dest"`
	Reason string `json:"reason" yaml:"reason"`
	_      struct{}
}

// SyncResult aggregates the outcome of one sync run. It is produced
// once per invocation and immutable after creation.
//
// Failures are listed in task submission order, regardless of the
// order transfers completed in.
type SyncResult struct {
	Completed int           `json:"completed" yaml:"completed"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Failed    int           `json:"failed" yaml:"failed"`
	Bytes     int64         `json:"bytes" yaml:"bytes"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	DryRun    bool          `json:"dryRun" yaml:"dryRun"`
	Failures  []TaskFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	_         struct{}
}

// TaskCount yields the number of tasks that reached a terminal state.
func (r *SyncResult) TaskCount() int {
	return r.Completed + r.Skipped + r.Failed
}

// Ok reports whether every task completed or was skipped.
func (r *SyncResult) Ok() bool {
	return r.Failed == 0
}
