package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustat/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EDUSTAT_DATA_DIR", "EDUSTAT_FIGURES_DIR", "EDUSTAT_PLOT_STYLE",
		"EDUSTAT_ALPHA", "EDUSTAT_EQUAL_VARIANCE", "EDUSTAT_REPORT_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Analysis.EqualVariance, "Welch is the default")
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("EDUSTAT_DATA_DIR", "/srv/study")
	t.Setenv("EDUSTAT_FIGURES_DIR", "/srv/figs")
	t.Setenv("EDUSTAT_PLOT_STYLE", "style.yaml")
	t.Setenv("EDUSTAT_ALPHA", "0.01")
	t.Setenv("EDUSTAT_EQUAL_VARIANCE", "true")
	t.Setenv("EDUSTAT_REPORT_FORMAT", "markdown")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/study", cfg.Paths.DataDir)
	assert.Equal(t, "/srv/figs", cfg.Paths.FiguresDir)
	assert.Equal(t, "style.yaml", cfg.Paths.PlotStyle)
	assert.Equal(t, 0.01, cfg.Analysis.Alpha)
	assert.True(t, cfg.Analysis.EqualVariance)
	assert.Equal(t, FormatMarkdown, cfg.Report.Format)
}

func TestLoad_UnparsableValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("EDUSTAT_ALPHA", "five percent")
	t.Setenv("EDUSTAT_EQUAL_VARIANCE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Analysis.Alpha)
	assert.False(t, cfg.Analysis.EqualVariance)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"alpha too large", "EDUSTAT_ALPHA", "1.5"},
		{"alpha zero", "EDUSTAT_ALPHA", "0"},
		{"unknown format", "EDUSTAT_REPORT_FORMAT", "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestValidate_AfterOverride(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Paths.DataDir = ""
	assert.Error(t, cfg.Validate())
}
