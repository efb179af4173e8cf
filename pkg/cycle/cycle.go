// Package cycle enumerates the forecast cycles covered by a sync request.
//
// Enumeration is pure: building a Range performs no I/O, and a Range may
// be iterated any number of times.
package cycle

import (
	"fmt"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/cycle/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
)

// snippetCycles caps the enumeration in snippet mode: enough cycles to
// smoke test a full download path without pulling a whole campaign.
const snippetCycles = 2

// Range is an immutable, inclusive window of forecast cycles spaced one
// interval apart.
type Range struct {
	first model.ForecastCycle
	count int
}

// Option customizes a Range.
type Option func(*settings)

type settings struct {
	snippet bool
}

// Snippet truncates the range to at most two cycles.
func Snippet(enabled bool) Option {
	return func(s *settings) {
		s.snippet = enabled
	}
}

// New builds the inclusive cycle range [first, last].
//
// A zero last defaults to one interval past first, yielding two cycles.
// When the window does not span a whole number of intervals, the range
// stops at the largest cycle not past last.
func New(first, last model.ForecastCycle, opts ...Option) (*Range, error) {
	var options settings
	for _, apply := range opts {
		apply(&options)
	}
	if first.IsZero() {
		return nil, status.ErrInvalidDateRange.Wrap(
			fmt.Errorf("a first cycle date is required when the use case does not supply one"))
	}
	if last.IsZero() {
		last = first.Next()
	}
	if last.Before(first) {
		return nil, status.ErrInvalidDateRange.Wrap(
			fmt.Errorf("last cycle %s precedes first cycle %s", last, first))
	}
	count := int(last.Time().Sub(first.Time())/model.CycleInterval) + 1
	if options.snippet && count > snippetCycles {
		count = snippetCycles
	}
	return &Range{first: first, count: count}, nil
}

// Count yields the number of cycles enumerated by the range.
func (r *Range) Count() int {
	return r.count
}

// First yields the first cycle of the range.
func (r *Range) First() model.ForecastCycle {
	return r.first
}

// Last yields the final enumerated cycle.
func (r *Range) Last() model.ForecastCycle {
	return r.first.AddDays(r.count - 1)
}

// Each applies fn to every cycle in increasing order, stopping at the
// first error.
func (r *Range) Each(fn func(model.ForecastCycle) error) error {
	curr := r.first
	for i := 0; i < r.count; i++ {
		if err := fn(curr); err != nil {
			return err
		}
		curr = curr.Next()
	}
	return nil
}

// Cycles materializes the enumeration.
func (r *Range) Cycles() []model.ForecastCycle {
	out := make([]model.ForecastCycle, 0, r.count)
	_ = r.Each(func(c model.ForecastCycle) error {
		out = append(out, c)
		return nil
	})
	return out
}
