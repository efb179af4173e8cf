// Package manifest maps a dataset kind and use case to the remote
// objects each forecast cycle contributes to a sync job.
//
// Datasets are declared as template descriptors in a lookup table
// keyed by (kind, use case). Descriptors are validated when registered,
// so a malformed template fails at startup rather than mid download.
package manifest

import (
	"fmt"
	"strings"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/manifest/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
)

// Tokens expanded in key templates and filters.
const (
	tokenDate = "{yyyymmdd}" // cycle date, shifted by the entry day offset
	tokenHour = "{hh}"       // cycle initialization hour, zero padded
	tokenFcst = "{fff}"      // forecast hour, zero padded to three digits
)

// HourSpan walks forecast hours for entries carrying the {fff} token.
type HourSpan struct {
	// Extent is the exclusive upper bound of the walk, relative to the
	// forecast hour of the request.
	Extent int

	// Step spaces the walked hours.
	Step int

	// Absolute lists fixed forecast hours instead of a relative walk.
	Absolute []int
}

func (h *HourSpan) walk(base int) []int {
	if h == nil {
		return nil
	}
	if len(h.Absolute) > 0 {
		return append([]int(nil), h.Absolute...)
	}
	hours := make([]int, 0, h.Extent/h.Step+1)
	for fhr := base; fhr < base+h.Extent; fhr += h.Step {
		hours = append(hours, fhr)
	}
	return hours
}

// Entry declares one key template contributing objects to a cycle.
//
// A template ending in "/" names a listing prefix: it expands to every
// remote key under the prefix matching Filter. Any other template names
// a single object.
type Entry struct {
	// KeyTemplate is the object key pattern, relative to the descriptor
	// base prefix.
	KeyTemplate string

	// Filter restricts listed keys when KeyTemplate names a prefix.
	Filter string

	// Hours walks forecast hours. Entries without the {fff} token leave it nil.
	Hours *HourSpan

	// FirstCycleOnly restricts the entry to the first cycle of the window.
	FirstCycleOnly bool

	// DayOffset shifts the cycle date before token expansion.
	DayOffset int
}

func (e Entry) cyclic() bool {
	return e.FirstCycleOnly ||
		e.Hours != nil ||
		strings.Contains(e.KeyTemplate, tokenDate) ||
		strings.Contains(e.KeyTemplate, tokenHour) ||
		strings.Contains(e.Filter, tokenDate)
}

// CycleWindow presets the first and last cycles of a campaign.
type CycleWindow struct {
	First model.ForecastCycle
	Last  model.ForecastCycle
}

// Descriptor declares where a dataset family lives and which objects
// belong to each forecast cycle.
type Descriptor struct {
	Kind    model.DatasetKind
	UseCase model.UseCaseKey

	// Bucket is the S3 bucket holding the dataset.
	Bucket string

	// BasePrefix roots every entry template within the bucket. Local
	// destination paths mirror keys relative to this prefix.
	BasePrefix string

	// Window presets the cycle window for use cases pinned to a campaign.
	// Explicit request bounds take precedence.
	Window *CycleWindow

	Entries []Entry
}

func (d *Descriptor) String() string {
	return string(d.Kind) + "/" + string(d.UseCase)
}

// Cyclic reports whether any entry expands per forecast cycle.
func (d *Descriptor) Cyclic() bool {
	for _, entry := range d.Entries {
		if entry.cyclic() {
			return true
		}
	}
	return false
}

// Validate checks the descriptor templates expand cleanly.
func (d *Descriptor) Validate() error {
	if d.Bucket == "" {
		return status.ErrInvalidDescriptor.Wrap(fmt.Errorf("%s: a bucket is required", d))
	}
	if len(d.Entries) == 0 {
		return status.ErrInvalidDescriptor.Wrap(fmt.Errorf("%s: at least one entry is required", d))
	}
	if d.BasePrefix != "" && !strings.HasSuffix(d.BasePrefix, "/") {
		return status.ErrInvalidDescriptor.Wrap(fmt.Errorf("%s: base prefix %q must end in /", d, d.BasePrefix))
	}
	if d.Window != nil && !d.Cyclic() {
		return status.ErrInvalidDescriptor.Wrap(fmt.Errorf("%s: a cycle window on a static dataset has no effect", d))
	}
	probe := model.NewForecastCycle(2024, 1, 1, 0)
	for _, entry := range d.Entries {
		if entry.KeyTemplate == "" {
			return status.ErrInvalidDescriptor.Wrap(fmt.Errorf("%s: empty key template", d))
		}
		walksHours := strings.Contains(entry.KeyTemplate, tokenFcst)
		if walksHours && entry.Hours == nil {
			return status.ErrInvalidDescriptor.Wrap(
				fmt.Errorf("%s: template %q carries %s but declares no hours", d, entry.KeyTemplate, tokenFcst))
		}
		if !walksHours && entry.Hours != nil {
			return status.ErrInvalidDescriptor.Wrap(
				fmt.Errorf("%s: template %q walks hours without the %s token", d, entry.KeyTemplate, tokenFcst))
		}
		if entry.Hours != nil && len(entry.Hours.Absolute) == 0 && entry.Hours.Step <= 0 {
			return status.ErrInvalidDescriptor.Wrap(
				fmt.Errorf("%s: template %q needs a positive hour step", d, entry.KeyTemplate))
		}
		if entry.Filter != "" && !strings.HasSuffix(entry.KeyTemplate, "/") {
			return status.ErrInvalidDescriptor.Wrap(
				fmt.Errorf("%s: filter %q applies to a single object template %q", d, entry.Filter, entry.KeyTemplate))
		}
		trial := expandForecastHour(expandCycle(entry.KeyTemplate, probe), 0)
		if strings.ContainsAny(trial, "{}") {
			return status.ErrInvalidDescriptor.Wrap(
				fmt.Errorf("%s: template %q expands to %q with unresolved tokens", d, entry.KeyTemplate, trial))
		}
	}
	return nil
}

// Resolve expands the descriptor entries for one cycle of a request
// into the ordered object set to mirror. It is deterministic and pure:
// identical inputs yield the identical sequence.
//
// Static datasets ignore the cycle argument.
func (d *Descriptor) Resolve(req model.DatasetRequest, cyc model.ForecastCycle) []model.RemoteObject {
	objects := make([]model.RemoteObject, 0, 4*len(d.Entries))
	for _, entry := range d.Entries {
		if entry.FirstCycleOnly && !cyc.Equal(req.FirstCycle) {
			continue
		}
		date := cyc.AddDays(entry.DayOffset)
		key := expandCycle(entry.KeyTemplate, date)
		filter := expandCycle(entry.Filter, date)
		if entry.Hours == nil {
			objects = append(objects, d.newObject(key, filter))
			continue
		}
		for _, fhr := range entry.Hours.walk(req.ForecastHour) {
			objects = append(objects, d.newObject(expandForecastHour(key, fhr), filter))
		}
	}
	return objects
}

func (d *Descriptor) newObject(key, filter string) model.RemoteObject {
	return model.RemoteObject{
		Key:     d.BasePrefix + key,
		RelPath: key,
		Size:    -1,
		Prefix:  strings.HasSuffix(key, "/"),
		Filter:  filter,
	}
}

// RelPath yields the destination path for a bucket absolute key,
// relative to the descriptor base prefix.
func (d *Descriptor) RelPath(key string) string {
	return strings.TrimPrefix(key, d.BasePrefix)
}

func expandCycle(tpl string, cyc model.ForecastCycle) string {
	tpl = strings.ReplaceAll(tpl, tokenDate, cyc.DateString())
	return strings.ReplaceAll(tpl, tokenHour, cyc.HourString())
}

func expandForecastHour(tpl string, fhr int) string {
	return strings.ReplaceAll(tpl, tokenFcst, fmt.Sprintf("%03d", fhr))
}
