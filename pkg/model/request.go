package model

import "fmt"

// DatasetKind identifies one of the dataset families handled by the sync commands.
type DatasetKind string

const (
	// KindTimeVarying covers the per cycle model inputs (GFS analyses and
	// forecasts, RAVE fire emissions, GEFS aerosols, restart files).
	KindTimeVarying DatasetKind = "time-varying"

	// KindSRWFixed covers the static SRW input data (fix files, NaturalEarth shapes).
	KindSRWFixed DatasetKind = "srw-fixed"

	// KindObservations covers the AirNow observation archives consumed by the evaluation.
	KindObservations DatasetKind = "observations"
)

// UseCaseKey names a preset selecting which templates and cycle window apply.
type UseCaseKey string

const (
	// UseCaseUndefined applies the default templates with a caller supplied window.
	UseCaseUndefined UseCaseKey = "UNDEFINED"

	// UseCaseAeromma pins the AEROMMA 2023 field campaign window.
	UseCaseAeromma UseCaseKey = "AEROMMA"
)

// ParseUseCase validates a use case name given on the command line.
func ParseUseCase(value string) (UseCaseKey, error) {
	switch UseCaseKey(value) {
	case UseCaseUndefined:
		return UseCaseUndefined, nil
	case UseCaseAeromma:
		return UseCaseAeromma, nil
	default:
		return "", fmt.Errorf("unknown use case %q (expected %s or %s)",
			value, UseCaseUndefined, UseCaseAeromma)
	}
}

// DatasetRequest gathers the user selection for a single sync run.
// It is built once from CLI input and read-only for the rest of the pipeline.
type DatasetRequest struct {
	Kind         DatasetKind
	UseCase      UseCaseKey
	FirstCycle   ForecastCycle
	LastCycle    ForecastCycle
	ForecastHour int
	Snippet      bool
}
