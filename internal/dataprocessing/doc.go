// Package dataprocessing merges the four loaded sources and computes
// the daily glucose statistics.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Merger: aligns sleep, workout and meal data onto the glucose timeline
// 2. Summarizer: computes per-day and range-wide glucose statistics
// 3. Quality: reports dataset health after merging
//
// # Usage
//
// Merging the loaded sources:
//
//	merger := dataprocessing.NewMerger(logger, domain.UnitMmolPerL)
//	dataset, err := merger.Merge(ctx, glucose, sleep, workouts, meals)
//	if err != nil {
//	    return err
//	}
//
// Generating summaries:
//
//	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
//	    TargetLow:  3.9,
//	    TargetHigh: 10.0,
//	})
//	summaries, err := summarizer.GenerateFromDataset(ctx, dataset)
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Loaded records → Merger → MergedDataset → Summarizer → DailySummary rows
//
// # Semantics
//
// Glucose timestamps are the primary axis; the other sources annotate
// them. A day produces a summary only when it has at least one reading.
// Sessions spanning midnight are clipped into every day they touch.
// The merge never mutates its inputs and is deterministic: the same
// records always produce the same dataset.
package dataprocessing
