// Package files provides file system operations and discovery utilities
// for the dashboard pipeline.
//
// This package contains two main components:
//
// Discovery: Provides file discovery operations such as finding CSV
// files and files matching specific patterns, plus a utility for
// picking the most recently modified file. The pipeline uses it to
// inventory the data directory and to suggest candidates when a
// configured export is missing.
//
// Manager: Provides the write-side operations the exporters build on,
// such as writing files with directory creation and checking artifact
// sizes. All operations are relative to a root path to maintain
// portability.
//
// Example usage:
//
//	// Create a discovery instance
//	discovery := files.NewDiscovery("/path/to/data")
//
//	// Find all CSV files
//	csvFiles, err := discovery.FindCSVFiles("")
//
//	// Create a manager instance
//	manager := files.NewManager("/path/to/output")
//
//	// Check if file exists
//	if manager.FileExists("dashboard.png") {
//	    // Process file
//	}
package files
