// Package status declares error constants returned by the cycle enumerator.
package status

import "github.com/NOAA-EPIC/AQM-Eval/pkg/errors"

var (
	// ErrInvalidDateRange indicates an inconsistent cycle window: the last
	// cycle precedes the first, or no first cycle was given and the use
	// case supplies no preset window.
	ErrInvalidDateRange = errors.New("invalid date range")
)
