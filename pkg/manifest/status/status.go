// Package status declares error constants returned by the dataset manifest registry.
package status

import "github.com/NOAA-EPIC/AQM-Eval/pkg/errors"

var (
	// ErrUnresolvableRequest indicates that no dataset descriptor is
	// registered for the requested dataset kind and use case.
	ErrUnresolvableRequest = errors.New("unresolvable request")

	// ErrInvalidDescriptor indicates a malformed dataset descriptor.
	// Descriptors are wired at package initialization, so this error
	// surfaces as a panic during startup validation.
	ErrInvalidDescriptor = errors.New("invalid dataset descriptor")
)
