package manifest

import (
	"time"

	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
)

// Dataset locations on the NOAA UFS SRW public bucket.
const (
	srwBucket = "noaa-ufs-srw-pds"

	aqmPrefix      = "UFS-AQM/"
	srwFixedPrefix = "develop-20250702/"
)

// aerommaWindow pins the AEROMMA 2023 field campaign.
func aerommaWindow() *CycleWindow {
	return &CycleWindow{
		First: model.NewForecastCycle(2023, time.June, 1, 12),
		Last:  model.NewForecastCycle(2023, time.August, 31, 12),
	}
}

// timeVaryingEntries lists the per cycle inputs for an air quality
// forecast run. GFS analysis and forecast files sit under the cycle
// date with a fixed 12Z directory; forecast files walk the requested
// forecast hour in 6 hour steps. Restart files are pulled for the day
// before the first cycle only.
func timeVaryingEntries() []Entry {
	return []Entry{
		{KeyTemplate: "GFS_SFC_DATA/gfs.{yyyymmdd}/12/atmos/gfs.t12z.sfcanl.nc"},
		{KeyTemplate: "FV3GFS/gfs.{yyyymmdd}/12/atmos/gfs.t12z.atmanl.nc"},
		{KeyTemplate: "RAVE_fire/{yyyymmdd}/", Filter: "*.nc"},
		{KeyTemplate: "FV3GFS/gfs.{yyyymmdd}/12/atmos/gfs.t{hh}z.atmf{fff}.nc", Hours: &HourSpan{Extent: 30, Step: 6}},
		{KeyTemplate: "FV3GFS/gfs.{yyyymmdd}/12/atmos/gfs.t{hh}z.sfcf{fff}.nc", Hours: &HourSpan{Extent: 30, Step: 6}},
		{KeyTemplate: "GFS_SFC_DATA/gfs.{yyyymmdd}/12/atmos/gfs.t12z.sfcf{fff}.nc", Hours: &HourSpan{Extent: 30, Step: 6}},
		{KeyTemplate: "GFS_SFC_DATA/gfs.{yyyymmdd}/12/atmos/gfs.t12z.sfcf{fff}.nc", Hours: &HourSpan{Absolute: []int{3, 9, 15, 21}}},
		{KeyTemplate: "GEFS_Aerosol/{yyyymmdd}/00/gfs.t00z.atmf{fff}.nemsio", Hours: &HourSpan{Extent: 42, Step: 6}},
		{KeyTemplate: "RESTART/", Filter: "*{yyyymmdd}*", FirstCycleOnly: true, DayOffset: -1},
	}
}

func init() {
	Register(&Descriptor{
		Kind:    model.KindTimeVarying,
		UseCase: model.UseCaseUndefined,
		Bucket:  srwBucket,

		BasePrefix: aqmPrefix,
		Entries:    timeVaryingEntries(),
	})

	Register(&Descriptor{
		Kind:    model.KindTimeVarying,
		UseCase: model.UseCaseAeromma,
		Bucket:  srwBucket,

		BasePrefix: aqmPrefix,
		Window:     aerommaWindow(),
		Entries:    timeVaryingEntries(),
	})

	Register(&Descriptor{
		Kind:    model.KindSRWFixed,
		UseCase: model.UseCaseUndefined,
		Bucket:  srwBucket,

		BasePrefix: srwFixedPrefix,
		Entries: []Entry{
			{KeyTemplate: "fix/"},
			{KeyTemplate: "NaturalEarth/"},
		},
	})

	// AirNow observation archives cover the AEROMMA campaign window by
	// default: the evaluation compares model output against that period.
	Register(&Descriptor{
		Kind:    model.KindObservations,
		UseCase: model.UseCaseUndefined,
		Bucket:  srwBucket,

		BasePrefix: aqmPrefix,
		Window:     aerommaWindow(),
		Entries: []Entry{
			{KeyTemplate: "Observations/AirNow/AirNow_{yyyymmdd}.nc"},
		},
	})
}
