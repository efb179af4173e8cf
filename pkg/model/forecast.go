package model

import (
	"fmt"
	"time"
)

// CycleInterval is the fixed spacing between two consecutive forecast cycles.
const CycleInterval = 24 * time.Hour

const (
	cycleDateForm     = "20060102"
	cycleDateHourForm = "2006010215"
)

// ForecastCycle identifies one discrete model initialization time,
// truncated to the hour (UTC). The zero value means "not set".
type ForecastCycle struct {
	t time.Time
}

// NewForecastCycle builds a cycle from a civil date and an initialization hour.
func NewForecastCycle(year int, month time.Month, day, hour int) ForecastCycle {
	return ForecastCycle{t: time.Date(year, month, day, hour, 0, 0, 0, time.UTC)}
}

// ParseForecastCycle accepts cycle timestamps in yyyymmdd or yyyymmddhh form.
// The initialization hour defaults to 00 when absent.
func ParseForecastCycle(value string) (ForecastCycle, error) {
	var (
		t   time.Time
		err error
	)
	switch len(value) {
	case len(cycleDateForm):
		t, err = time.ParseInLocation(cycleDateForm, value, time.UTC)
	case len(cycleDateHourForm):
		t, err = time.ParseInLocation(cycleDateHourForm, value, time.UTC)
	default:
		err = fmt.Errorf("expected a yyyymmdd or yyyymmddhh timestamp, got %q", value)
	}
	if err != nil {
		return ForecastCycle{}, err
	}
	return ForecastCycle{t: t}, nil
}

// IsZero reports whether the cycle has been set.
func (c ForecastCycle) IsZero() bool {
	return c.t.IsZero()
}

// Time yields the initialization time of the cycle.
func (c ForecastCycle) Time() time.Time {
	return c.t
}

// DateString yields the yyyymmdd form of the cycle date.
func (c ForecastCycle) DateString() string {
	return c.t.Format(cycleDateForm)
}

// HourString yields the zero padded initialization hour.
func (c ForecastCycle) HourString() string {
	return fmt.Sprintf("%02d", c.t.Hour())
}

// String yields the yyyymmddhh form of the cycle.
func (c ForecastCycle) String() string {
	return c.t.Format(cycleDateHourForm)
}

// Next yields the following cycle, one interval later.
func (c ForecastCycle) Next() ForecastCycle {
	return ForecastCycle{t: c.t.Add(CycleInterval)}
}

// AddDays shifts the cycle by a whole number of days, keeping the hour.
func (c ForecastCycle) AddDays(days int) ForecastCycle {
	return ForecastCycle{t: c.t.AddDate(0, 0, days)}
}

// Before reports whether c precedes other.
func (c ForecastCycle) Before(other ForecastCycle) bool {
	return c.t.Before(other.t)
}

// Equal reports whether both cycles pin the same initialization time.
func (c ForecastCycle) Equal(other ForecastCycle) bool {
	return c.t.Equal(other.t)
}
