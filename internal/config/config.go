package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"cgmcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Data          DataConfig          `yaml:"data" envconfig:"DATA"`
	Glucose       GlucoseConfig       `yaml:"glucose" envconfig:"GLUCOSE"`
	Dashboard     DashboardConfig     `yaml:"dashboard" envconfig:"DASHBOARD"`
	Exports       ExportsConfig       `yaml:"exports" envconfig:"EXPORTS"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// DataConfig locates the four input CSV exports.
type DataConfig struct {
	Dir           string `yaml:"dir" envconfig:"DIR" validate:"required"`
	GlucoseFile   string `yaml:"glucose_file" envconfig:"GLUCOSE_FILE" validate:"required"`
	SleepFile     string `yaml:"sleep_file" envconfig:"SLEEP_FILE" validate:"required"`
	WorkoutFile   string `yaml:"workout_file" envconfig:"WORKOUT_FILE" validate:"required"`
	NutritionFile string `yaml:"nutrition_file" envconfig:"NUTRITION_FILE" validate:"required"`

	// DateOrder pins the day/month order of slash dates. "auto"
	// infers it per file and fails when the data is ambiguous.
	DateOrder string `yaml:"date_order" envconfig:"DATE_ORDER" validate:"oneof=auto dmy mdy"`
}

// GlucoseConfig sets the display unit and target range.
type GlucoseConfig struct {
	// Unit is the display unit; readings are converted on load.
	Unit string `yaml:"unit" envconfig:"UNIT" validate:"oneof=mmol/L mg/dL"`

	// Target range bounds, in Unit. Readings inside [TargetLow,
	// TargetHigh] count toward time in range.
	TargetLow  float64 `yaml:"target_low" envconfig:"TARGETLOW" validate:"gt=0"`
	TargetHigh float64 `yaml:"target_high" envconfig:"TARGETHIGH" validate:"gtfield=TargetLow"`
}

// DashboardConfig controls rendering and artifact assembly.
type DashboardConfig struct {
	Format    string `yaml:"format" envconfig:"FORMAT" validate:"oneof=png pdf html"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Basename  string `yaml:"basename" envconfig:"BASENAME" validate:"required"`

	// Panel geometry in pixels. Every day panel uses the same size.
	PanelWidth  int     `yaml:"panel_width" envconfig:"PANEL_WIDTH" validate:"min=400"`
	PanelHeight int     `yaml:"panel_height" envconfig:"PANEL_HEIGHT" validate:"min=150"`
	DPI         float64 `yaml:"dpi" envconfig:"DPI" validate:"gt=0"`

	// Overview adds a whole-range panel above the day panels.
	Overview bool `yaml:"overview" envconfig:"OVERVIEW"`

	// MaxDays caps the number of day panels; 0 renders all days.
	MaxDays int `yaml:"max_days" envconfig:"MAX_DAYS" validate:"min=0"`

	// From/To restrict the dashboard to an ISO date range.
	From string `yaml:"from" envconfig:"FROM" validate:"omitempty,datetime=2006-01-02"`
	To   string `yaml:"to" envconfig:"TO" validate:"omitempty,datetime=2006-01-02"`

	Annotations AnnotationConfig `yaml:"annotations" envconfig:"ANNOTATIONS"`
}

// AnnotationConfig tunes meal label placement on day charts.
type AnnotationConfig struct {
	// MinGapMinutes is how close two meals may be before their
	// labels are pushed to different vertical levels.
	MinGapMinutes int `yaml:"min_gap_minutes" envconfig:"MIN_GAP_MINUTES" validate:"min=1"`

	// MaxLevels is the number of vertical label levels before
	// placement wraps back to the first level.
	MaxLevels int `yaml:"max_levels" envconfig:"MAX_LEVELS" validate:"min=1"`
}

// ExportsConfig toggles the side artifacts written next to the dashboard.
type ExportsConfig struct {
	SummaryCSV  bool `yaml:"summary_csv" envconfig:"SUMMARY_CSV"`
	SummaryXLSX bool `yaml:"summary_xlsx" envconfig:"SUMMARY_XLSX"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ObservabilityConfig controls tracing and metrics for a batch run.
type ObservabilityConfig struct {
	// TraceExporter selects span output: stdout or none.
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`

	// MetricExporter selects the metric pipeline: prometheus or none.
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`

	// MetricsFile is where the final metric snapshot is written in
	// Prometheus textfile format. Empty skips the write.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load loads configuration from defaults, an optional YAML file, and
// CGM_* environment variables, in increasing order of precedence.
// With an empty path the default locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configFile, err)
		}
	}

	// Environment variables override file values.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile merges a YAML file over the current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the first config file found in the common
// locations, or empty when none exists.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks the configuration with the struct tags plus the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var invalid []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				invalid = append(invalid, fmt.Sprintf("%s (%s)", ve.Namespace(), ve.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(invalid, ", "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	// The unit tag only checks spelling; make sure it parses too.
	if _, err := domain.ParseUnit(c.Glucose.Unit); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("config validation failed: logging.file_path required when output is %q", c.Logging.Output)
	}

	return nil
}

// Unit returns the parsed display unit. Call after Validate.
func (c *Config) Unit() domain.Unit {
	u, _ := domain.ParseUnit(c.Glucose.Unit)
	return u
}

// ResolvePaths builds the full path set from the configured directories.
func (c *Config) ResolvePaths() *Paths {
	return NewPaths(c)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:           DefaultDataDir,
			GlucoseFile:   DefaultGlucoseFile,
			SleepFile:     DefaultSleepFile,
			WorkoutFile:   DefaultWorkoutFile,
			NutritionFile: DefaultNutritionFile,
			DateOrder:     "auto",
		},
		Glucose: GlucoseConfig{
			Unit:       string(domain.UnitMmolPerL),
			TargetLow:  DefaultTargetLow,
			TargetHigh: DefaultTargetHigh,
		},
		Dashboard: DashboardConfig{
			Format:      "png",
			OutputDir:   DefaultOutputDir,
			Basename:    "dashboard",
			PanelWidth:  DefaultPanelWidth,
			PanelHeight: DefaultPanelHeight,
			DPI:         DefaultDPI,
			Overview:    true,
			Annotations: AnnotationConfig{
				MinGapMinutes: DefaultAnnotationGapMinutes,
				MaxLevels:     DefaultAnnotationLevels,
			},
		},
		Exports: ExportsConfig{
			SummaryCSV:  true,
			SummaryXLSX: false,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "stdout",
			FilePath: DefaultLogsDir + "/cgmpulse.log",
		},
		Observability: ObservabilityConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			MetricsFile:    DefaultMetricsDir + "/cgmpulse.prom",
		},
	}
}
