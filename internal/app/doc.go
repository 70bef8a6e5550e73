// Package app wires the pipeline together and runs it end to end.
//
// The Runner owns the stage sequence:
//
//	prepare → load → merge → summarize → export
//
// prepare checks the input files and creates the output directories,
// load reads the four CSV exports, merge aligns sleep, workout and
// meal data onto the glucose timeline, summarize computes the daily
// statistics and the quality report, and export writes the dashboard
// artifact plus the enabled side exports.
//
// Every stage is timed, traced and logged; the first failing stage
// aborts the run and its error reaches the CLI unchanged.
//
// Example usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	runner, err := app.NewRunner(cfg, logger, providers)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.ArtifactPath)
package app
