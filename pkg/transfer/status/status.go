// Package status declares error constants returned by the transfer package.
package status

import "github.com/NOAA-EPIC/AQM-Eval/pkg/errors"

var (
	// ErrInvalidConfig indicates that the scheduler was built with unusable settings
	ErrInvalidConfig = errors.New("invalid configuration")
)
