package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

const sampleYAML = `
data:
  path: ./data/startup_funding.csv
  csv:
    delimiter: ";"
  null_tokens: ["", "undisclosed"]
schema:
  aliases:
    city: ["Town"]
normalization:
  - field: city
    actions:
      - type: lookup
        lookup_table:
          Bangalore: Bengaluru
dashboard:
  top_n: 15
  bucket: quarter
server:
  addr: ":9090"
  read_timeout: 5s
logging:
  level: debug
  format: json
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "./data/startup_funding.csv", cfg.Data.Path)
	assert.Equal(t, ";", cfg.Data.CSV.Delimiter)
	assert.Equal(t, 1, cfg.Data.CSV.HeaderRows)
	assert.Equal(t, 2, cfg.Data.CSV.DataStartRow)
	assert.Equal(t, []string{"", "undisclosed"}, cfg.Data.NullTokens)
	assert.Equal(t, DefaultDateLayouts, cfg.Data.DateLayouts)

	assert.Equal(t, 15, cfg.Dashboard.TopN)
	assert.Equal(t, 5, cfg.Dashboard.PreviewRows)
	assert.Equal(t, "quarter", cfg.Dashboard.Bucket)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)

	require.Len(t, cfg.Normalization, 1)
	assert.Equal(t, "Bengaluru", cfg.Normalization[0].Actions[0].LookupTable["Bangalore"])
	assert.Equal(t, map[types.Field][]string{types.FieldCity: {"Town"}}, cfg.ExtraAliases())

	assert.NoError(t, cfg.Validate())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("data: [unterminated"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ",", cfg.Data.CSV.Delimiter)
	assert.Equal(t, 10, cfg.Dashboard.TopN)
	assert.Equal(t, "month", cfg.Dashboard.Bucket)
	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.Equal(t, "{dataset}_{timestamp}.xlsx", cfg.Output.FileNameFormat)
	assert.Equal(t, 1000, cfg.Server.MaxRawRows)
	assert.Nil(t, cfg.ExtraAliases())

	// No dataset path yet.
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "data.path")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FUNDING_DATA_PATH", "/srv/funding.xlsx")
	t.Setenv("FUNDING_DASHBOARD_TOP_N", "3")
	t.Setenv("FUNDING_SERVER_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("FUNDING_LOGGING_LEVEL", "warn")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "/srv/funding.xlsx", cfg.Data.Path)
	assert.Equal(t, 3, cfg.Dashboard.TopN)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Values without an override keep the file's setting.
	assert.Equal(t, "quarter", cfg.Dashboard.Bucket)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("FUNDING_DASHBOARD_TOP_N", "lots")

	_, err := Parse([]byte(sampleYAML))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Dashboard.TopN)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad bucket", func(c *Config) { c.Dashboard.Bucket = "week" }, "dashboard.bucket"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative preview", func(c *Config) { c.Dashboard.PreviewRows = -1 }, "dashboard.preview_rows"},
		{"normalization on numeric field", func(c *Config) {
			c.Normalization = []NormalizationRule{{Field: "amount_usd", Actions: []NormalizationAction{{Type: "trim"}}}}
		}, "normalization[0].field"},
		{"replace without find", func(c *Config) {
			c.Normalization = []NormalizationRule{{Field: "city", Actions: []NormalizationAction{{Type: "replace"}}}}
		}, "normalization[0].actions[0].find"},
		{"unknown alias field", func(c *Config) {
			c.Schema.Aliases = map[string][]string{"valuation": {"Valuation"}}
		}, `unknown field "valuation"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Data.Path = "funding.csv"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
