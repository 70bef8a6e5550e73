package dataprocessing

import (
	"time"

	"cgmcli/pkg/contracts/domain"
)

// samplingInterval is the nominal CGM cadence used to estimate how
// much of the window lacks glucose data.
const samplingInterval = 5 * time.Minute

// SourceCounts carries the loaded row counts per source.
type SourceCounts struct {
	GlucoseReadings int
	SleepSessions   int
	Workouts        int
	Meals           int
}

// BuildQualityReport computes dataset health after merging: how much
// of the window the CGM actually covered, how many days have sleep
// data, and how many rows each loader dropped.
func BuildQualityReport(dataset *MergedDataset, counts SourceCounts, skipped map[domain.Source]int) domain.QualityReport {
	report := domain.QualityReport{
		Start:           dataset.Start,
		End:             dataset.End,
		Days:            len(dataset.Days),
		GlucoseReadings: counts.GlucoseReadings,
		SleepSessions:   counts.SleepSessions,
		Workouts:        counts.Workouts,
		Meals:           counts.Meals,
		SkippedRows:     skipped,
	}

	if slots := dataset.End.Sub(dataset.Start) / samplingInterval; slots > 0 {
		missing := 100 * (1 - float64(counts.GlucoseReadings)/float64(slots))
		if missing < 0 {
			missing = 0
		}
		report.MissingGlucosePct = missing
	}

	if len(dataset.Days) > 0 {
		withSleep := 0
		for _, day := range dataset.Days {
			if len(day.Sleep) > 0 {
				withSleep++
			}
		}
		report.SleepCoveragePct = 100 * float64(withSleep) / float64(len(dataset.Days))
	}

	return report
}
