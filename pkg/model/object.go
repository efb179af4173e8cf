package model

// RemoteObject locates one remote object, or one listed family of
// objects, to mirror into the destination tree.
//
// Dataset descriptors derive these deterministically from a request
// and a forecast cycle. An object has no identity beyond its key.
type RemoteObject struct {
	// Key is the object key, absolute within its bucket.
	Key string

	// RelPath is the destination path relative to the sync root,
	// slash separated. For a listing prefix it mirrors the prefix;
	// expansion replaces it with the path of each listed key.
	RelPath string

	// Size is the remote object size when known from a listing, -1 otherwise.
	Size int64

	// ETag is the remote entity tag when known from a listing.
	ETag string

	// Prefix marks Key as a listing prefix to expand rather than a single object.
	Prefix bool

	// Filter restricts the keys retained when expanding a prefix.
	// A '*' matches any run of characters, path separators included.
	Filter string
}

// TransferState tracks the lifecycle of a single transfer task.
// Transitions are monotonic: pending moves to in-flight, then to
// exactly one of the terminal states.
type TransferState int

const (
	// TransferPending indicates the task has been admitted to the plan and not yet started.
	TransferPending TransferState = iota

	// TransferInflight indicates the task currently holds an admission slot.
	TransferInflight

	// TransferCompleted indicates the object was written to its final destination path.
	TransferCompleted

	// TransferSkipped indicates the destination already held the object.
	TransferSkipped

	// TransferFailed indicates the transfer failed and was recorded with a reason.
	TransferFailed
)

func (s TransferState) String() string {
	switch s {
	case TransferPending:
		return "pending"
	case TransferInflight:
		return "in-flight"
	case TransferCompleted:
		return "completed"
	case TransferSkipped:
		return "skipped"
	case TransferFailed:
		return "failed"
	default:
		return "unknown"
	}
}
