package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	DataDir    string
	OutputDir  string
	LogsDir    string
	MetricsDir string

	// Input files
	GlucoseCSV   string
	SleepCSV     string
	WorkoutCSV   string
	NutritionCSV string

	// Well-known output files
	SummaryCSV  string
	SummaryXLSX string
	MetricsFile string

	// Dashboard artifact basename; the extension comes from the
	// export format.
	dashboardBase string
}

// NewPaths resolves every path from the configuration. Relative
// directories stay relative to the working directory so the tools
// behave like ordinary batch CLIs.
func NewPaths(cfg *Config) *Paths {
	dataDir := cfg.Data.Dir
	outDir := cfg.Dashboard.OutputDir

	metricsFile := cfg.Observability.MetricsFile
	metricsDir := DefaultMetricsDir
	if metricsFile != "" {
		metricsDir = filepath.Dir(metricsFile)
	}

	logsDir := DefaultLogsDir
	if cfg.Logging.FilePath != "" {
		logsDir = filepath.Dir(cfg.Logging.FilePath)
	}

	return &Paths{
		DataDir:    dataDir,
		OutputDir:  outDir,
		LogsDir:    logsDir,
		MetricsDir: metricsDir,

		GlucoseCSV:   filepath.Join(dataDir, cfg.Data.GlucoseFile),
		SleepCSV:     filepath.Join(dataDir, cfg.Data.SleepFile),
		WorkoutCSV:   filepath.Join(dataDir, cfg.Data.WorkoutFile),
		NutritionCSV: filepath.Join(dataDir, cfg.Data.NutritionFile),

		SummaryCSV:  filepath.Join(outDir, "daily_summaries.csv"),
		SummaryXLSX: filepath.Join(outDir, "daily_summaries.xlsx"),
		MetricsFile: metricsFile,

		dashboardBase: cfg.Dashboard.Basename,
	}
}

// DashboardPath returns the artifact path for an export format.
func (p *Paths) DashboardPath(format string) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf("%s.%s", p.dashboardBase, format))
}

// EnsureDirectories creates the output directories if they don't
// exist. The data directory is intentionally excluded: inputs must
// already be there.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.LogsDir,
	}
	if p.MetricsFile != "" {
		directories = append(directories, p.MetricsDir)
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ValidateRequiredFiles checks that every input CSV exists and returns
// detailed error information when any is missing.
func (p *Paths) ValidateRequiredFiles() error {
	requiredFiles := map[string]string{
		"Glucose":   p.GlucoseCSV,
		"Sleep":     p.SleepCSV,
		"Workout":   p.WorkoutCSV,
		"Nutrition": p.NutritionCSV,
	}

	var missingFiles []string
	for name, path := range requiredFiles {
		if !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
			slog.String("metrics", p.MetricsDir),
		),
		slog.Group("inputs",
			slog.String("glucose", p.GlucoseCSV),
			slog.String("sleep", p.SleepCSV),
			slog.String("workout", p.WorkoutCSV),
			slog.String("nutrition", p.NutritionCSV),
		),
		slog.Group("outputs",
			slog.String("summary_csv", p.SummaryCSV),
			slog.String("summary_xlsx", p.SummaryXLSX),
			slog.String("metrics_file", p.MetricsFile),
		))
}
