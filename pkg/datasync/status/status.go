// Package status declares the errors of the datasync package.
package status

import (
	"github.com/NOAA-EPIC/AQM-Eval/pkg/errors"
)

var (
	// ErrPartialJobFailure indicates that at least one transfer of a sync job failed.
	// The job result still accounts for every other task.
	ErrPartialJobFailure = errors.New("some transfers failed")

	// ErrInvalidDestination indicates that no usable destination was configured.
	ErrInvalidDestination = errors.New("invalid destination")
)
