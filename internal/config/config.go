package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "BIKE"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Auth      AuthConfig      `yaml:"auth" envconfig:"AUTH"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Relative directories are resolved against the working directory.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	AssetsDir string `yaml:"assets_dir" envconfig:"ASSETS_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// DatasetConfig controls where the trip dataset comes from
type DatasetConfig struct {
	URL         string        `yaml:"url" envconfig:"URL" validate:"required,url"`
	FileName    string        `yaml:"file_name" envconfig:"FILE_NAME" validate:"required"`
	RowLimit    int           `yaml:"row_limit" envconfig:"ROW_LIMIT" validate:"min=1"`
	HTTPTimeout time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" validate:"gt=0"`
}

// AuthConfig configures the credential store and session tokens
type AuthConfig struct {
	Driver      string            `yaml:"driver" envconfig:"DRIVER" validate:"oneof=sqlite postgres"`
	DSN         string            `yaml:"dsn" envconfig:"DSN" validate:"required"`
	SigningKey  string            `yaml:"signing_key" envconfig:"SIGNING_KEY" validate:"required,min=16"`
	TokenTTL    time.Duration     `yaml:"token_ttl" envconfig:"TOKEN_TTL" validate:"gt=0"`
	MaxAttempts int               `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"min=1"`
	SeedUsers   map[string]string `yaml:"seed_users" envconfig:"SEED_USERS"`
}

// ReportConfig controls the generated document
type ReportConfig struct {
	FileName   string `yaml:"file_name" envconfig:"FILE_NAME" validate:"required"`
	LogoFile   string `yaml:"logo_file" envconfig:"LOGO_FILE" validate:"required"`
	HeaderText string `yaml:"header_text" envconfig:"HEADER_TEXT"`
	OpenViewer bool   `yaml:"open_viewer" envconfig:"OPEN_VIEWER"`
	ExportCSV  bool   `yaml:"export_csv" envconfig:"EXPORT_CSV"`
}

// TelemetryConfig enables trace and metric output. Empty paths disable them.
type TelemetryConfig struct {
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence (env wins).
// An empty configFile means the usual locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// No default tags on purpose: unset variables leave file values alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: "logs/bikereport.log",
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			InputDir:  DefaultInputDir,
			OutputDir: DefaultOutputDir,
			AssetsDir: DefaultAssetsDir,
			LogsDir:   DefaultLogsDir,
		},
		Dataset: DatasetConfig{
			URL:         DefaultDatasetURL,
			FileName:    DatasetFileName,
			RowLimit:    DefaultRowLimit,
			HTTPTimeout: DefaultHTTPTimeout,
		},
		Auth: AuthConfig{
			Driver:      "sqlite",
			DSN:         "file:data/users.db",
			SigningKey:  "change-me-bikereport-signing-key",
			TokenTTL:    SessionTimeout,
			MaxAttempts: MaxLoginAttempts,
		},
		Report: ReportConfig{
			FileName:   ReportFileName,
			LogoFile:   LogoFileName,
			HeaderText: AppName,
			OpenViewer: true,
		},
	}
}
