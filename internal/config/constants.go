package config

// Application constants shared across the CLI tools.
const (
	// Application Info
	AppName    = "CGM Pulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment override (CGM_*).
	EnvPrefix = "CGM"

	// Input file names, matching the exports the loaders understand.
	DefaultGlucoseFile   = "glucose_data.csv"
	DefaultSleepFile     = "sleepdata.csv"
	DefaultWorkoutFile   = "workout_data.csv"
	DefaultNutritionFile = "food_log.csv"

	// Directories (relative to the working directory unless overridden)
	DefaultDataDir    = "data"
	DefaultOutputDir  = "output"
	DefaultLogsDir    = "logs"
	DefaultMetricsDir = "metrics"

	// Dashboard geometry. One day panel is 1500x400 at 100 DPI, the
	// proportions the daily plots were designed around.
	DefaultPanelWidth  = 1500
	DefaultPanelHeight = 400
	DefaultDPI         = 100.0

	// Glucose target range in mmol/L.
	DefaultTargetLow  = 3.9
	DefaultTargetHigh = 10.0

	// Meal annotation placement.
	DefaultAnnotationGapMinutes = 45
	DefaultAnnotationLevels     = 4

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DashboardFormats lists the supported export formats.
var DashboardFormats = []string{"png", "pdf", "html"}
