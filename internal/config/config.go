// =============================================================================
// Startup Funding Dashboard - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration.
//
// SOURCES (later sources win):
//   1. Built-in defaults (applyDefaults)
//   2. The YAML configuration file (config.yaml)
//   3. Environment variables prefixed with FUNDING_ (e.g. FUNDING_DATA_PATH)
//   4. Command-line flags (applied by the cmd package)
//
// Defaults are applied after the file and environment so that an unset value
// in either never overwrites an explicit one.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/funding-dashboard/internal/types"
	"github.com/ginjaninja78/funding-dashboard/internal/validation"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "FUNDING"

// ErrNotFound is returned by Load when the configuration file does not exist.
var ErrNotFound = errors.New("config file not found")

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete application configuration.
type Config struct {
	Data          DataConfig          `yaml:"data" envconfig:"DATA"`
	Schema        SchemaConfig        `yaml:"schema" envconfig:"SCHEMA"`
	Normalization []NormalizationRule `yaml:"normalization" ignored:"true" validate:"dive"`
	Dashboard     DashboardConfig     `yaml:"dashboard" envconfig:"DASHBOARD"`
	Output        OutputConfig        `yaml:"output" envconfig:"OUTPUT"`
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
}

// DataConfig describes the input dataset.
type DataConfig struct {
	// Path is the CSV or XLSX file to load. Required.
	Path string `yaml:"path" split_words:"true" validate:"required"`

	// Sheet is the worksheet to read when Path is an XLSX workbook.
	// Default: the first sheet.
	Sheet string `yaml:"sheet" split_words:"true"`

	// CSV contains settings for parsing CSV input.
	CSV CSVSettings `yaml:"csv" envconfig:"CSV"`

	// DateLayouts are Go time layouts tried in order when coercing dates.
	// Default: see DefaultDateLayouts.
	DateLayouts []string `yaml:"date_layouts" split_words:"true"`

	// NullTokens are cell values treated as null (compared case-insensitively).
	NullTokens []string `yaml:"null_tokens" split_words:"true"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator: ",", "|", ";", "\t" or "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter" split_words:"true"`

	// HeaderRows is the number of header rows. Multi-line headers are merged
	// column by column with a space.
	// Default: 1
	HeaderRows int `yaml:"header_rows" split_words:"true" validate:"gte=0"`

	// DataStartRow is the 1-indexed row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row" split_words:"true" validate:"gte=0"`
}

// SchemaConfig extends the built-in column alias table.
type SchemaConfig struct {
	// Aliases maps a canonical field name (e.g. "city") to extra source
	// column names tried before the built-in aliases.
	Aliases map[string][]string `yaml:"aliases" ignored:"true"`
}

// NormalizationRule is a chain of actions applied to one canonical text field
// before records are typed.
type NormalizationRule struct {
	// Field is the canonical field name, e.g. "city".
	Field string `yaml:"field" validate:"required,oneof=startup_name industry city investment_type investor_name"`

	// Actions are applied in order.
	Actions []NormalizationAction `yaml:"actions" validate:"min=1,dive"`
}

// NormalizationAction defines a single normalization step.
type NormalizationAction struct {
	// Type is one of: trim, uppercase, lowercase, title, replace, lookup,
	// collapse_spaces.
	Type string `yaml:"type" validate:"required,oneof=trim uppercase lowercase title replace lookup collapse_spaces"`

	// Value is the replacement string for "replace".
	Value string `yaml:"value"`

	// Find is the substring to replace for "replace".
	Find string `yaml:"find,omitempty" validate:"required_if=Type replace"`

	// LookupTable maps whole input values to output values for "lookup".
	// Keys are matched case-insensitively.
	LookupTable map[string]string `yaml:"lookup_table,omitempty" validate:"required_if=Type lookup"`
}

// DashboardConfig controls which views are computed and how.
type DashboardConfig struct {
	// TopN is the number of entries kept in ranked views.
	// Default: 10
	TopN int `yaml:"top_n" split_words:"true" validate:"gte=1"`

	// PreviewRows is the number of filtered records shown as a preview.
	// Default: 5
	PreviewRows int `yaml:"preview_rows" split_words:"true" validate:"gte=0"`

	// Bucket is the time bucket for the trend view: month, quarter or year.
	// Default: month
	Bucket string `yaml:"bucket" split_words:"true" validate:"oneof=month quarter year"`

	// FillGaps makes the trend view include empty buckets between the first
	// and last bucket with data.
	FillGaps bool `yaml:"fill_gaps" split_words:"true"`
}

// OutputConfig controls exported report files.
type OutputConfig struct {
	// Dir is the directory where exported reports are written.
	// Default: "./output"
	Dir string `yaml:"dir" split_words:"true" validate:"required"`

	// FileNameFormat is the report file name. Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {dataset}   - Base name of the input file without extension
	// Default: "{dataset}_{timestamp}.xlsx"
	FileNameFormat string `yaml:"file_name_format" split_words:"true" validate:"required"`
}

// ServerConfig contains HTTP server settings for the serve command.
type ServerConfig struct {
	Addr            string        `yaml:"addr" split_words:"true" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gte=0"`
	MaxRawRows      int           `yaml:"max_raw_rows" split_words:"true" validate:"gte=1"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`

	// Format is json or text. Default: text
	Format string `yaml:"format" split_words:"true" validate:"oneof=json text"`

	// Output is console, file or both. Default: console
	Output string `yaml:"output" split_words:"true" validate:"oneof=console file both"`

	// FilePath is used when Output is file or both. Default: "./logs/funding.log"
	FilePath string `yaml:"file_path" split_words:"true"`
}

// DefaultDateLayouts are tried in order when a date cell is coerced.
// Day-first layouts precede month-first ones, matching the Indian
// startup funding exports this tool was built for.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan-2006",
}

// DefaultNullTokens are cell values treated as null.
var DefaultNullTokens = []string{
	"", "nan", "null", "none", "n/a", "na", "-", "undisclosed", "unknown", "undisclosed investors",
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file, applies environment overrides and
// defaults. It does not validate; call Validate once flags are applied.
//
// PARAMETERS:
//   - configPath: The path to the YAML configuration file.
//
// RETURNS:
//   - The loaded configuration.
//   - ErrNotFound (wrapped) if the file does not exist, or a parse error.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// ApplyEnv overrides configuration values from FUNDING_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Data.CSV.Delimiter == "" {
		cfg.Data.CSV.Delimiter = ","
	}
	if cfg.Data.CSV.HeaderRows == 0 {
		cfg.Data.CSV.HeaderRows = 1
	}
	if cfg.Data.CSV.DataStartRow == 0 {
		cfg.Data.CSV.DataStartRow = cfg.Data.CSV.HeaderRows + 1
	}
	if len(cfg.Data.DateLayouts) == 0 {
		cfg.Data.DateLayouts = append([]string(nil), DefaultDateLayouts...)
	}
	if len(cfg.Data.NullTokens) == 0 {
		cfg.Data.NullTokens = append([]string(nil), DefaultNullTokens...)
	}

	if cfg.Dashboard.TopN == 0 {
		cfg.Dashboard.TopN = 10
	}
	if cfg.Dashboard.PreviewRows == 0 {
		cfg.Dashboard.PreviewRows = 5
	}
	if cfg.Dashboard.Bucket == "" {
		cfg.Dashboard.Bucket = "month"
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.FileNameFormat == "" {
		cfg.Output.FileNameFormat = "{dataset}_{timestamp}.xlsx"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxRawRows == 0 {
		cfg.Server.MaxRawRows = 1000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "console"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "./logs/funding.log"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration against its struct tags and verifies
// that alias keys name canonical fields.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for key := range c.Schema.Aliases {
		if _, ok := types.ParseField(key); !ok {
			return fmt.Errorf("%w: schema.aliases: unknown field %q", ErrInvalid, key)
		}
	}
	return nil
}

// ExtraAliases converts the configured alias overrides to canonical fields.
// Unknown keys are ignored; Validate reports them.
func (c *Config) ExtraAliases() map[types.Field][]string {
	if len(c.Schema.Aliases) == 0 {
		return nil
	}
	out := make(map[types.Field][]string, len(c.Schema.Aliases))
	for key, aliases := range c.Schema.Aliases {
		if f, ok := types.ParseField(key); ok {
			out[f] = aliases
		}
	}
	return out
}
