package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/clean"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, appName)
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, Validate(DefaultConfig()))
	assert.Equal(t, clean.DefaultOptions(), DefaultConfig().CleanOptions())
}

func TestValidateReportsFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidencePercent = 40
	cfg.Charts[0].Smoother = "median"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConfidencePercent")
	assert.Contains(t, err.Error(), "Smoother")
}

func TestValidateSmootherArgument(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Charts[1].Window = 0
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Window")
}

func TestBuildSmoother(t *testing.T) {
	ewm := ChartSpec{Smoother: "ewm", Halflife: 14}.BuildSmoother()
	assert.Equal(t, "EWM (halflife 14 days)", ewm.Name)

	lw := ChartSpec{Smoother: "lowess", Window: 91}.BuildSmoother()
	assert.Equal(t, "LOWESS (91 days)", lw.Name)

	_, ok, err := lw.Smooth([]float64{1, 2}, []time.Time{time.Now(), time.Now().Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	isolate(t)

	cfg, used, err := LoadMerged(Options{Output: "out", Debug: true})
	require.NoError(t, err)
	assert.Contains(t, used, "default config in memory")
	assert.Equal(t, "out", cfg.Output)
	assert.True(t, cfg.Debug)
	assert.Len(t, cfg.Charts, 3)
}

func TestLoadMergedEnvOverlay(t *testing.T) {
	isolate(t)
	t.Setenv("POLLSMOOTH_OUTPUT", "from-env")
	t.Setenv("POLLSMOOTH_CONFIDENCE_PERCENT", "99")
	t.Setenv("POLLSMOOTH_BRAND_COLUMNS", "Firm,Pollster")

	cfg, _, err := LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output)
	assert.Equal(t, 99.0, cfg.ConfidencePercent)
	assert.Equal(t, []string{"Firm", "Pollster"}, cfg.BrandColumns)

	// flags beat the environment
	cfg, _, err = LoadMerged(Options{IgnoreConfig: true, Output: "from-flag"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Output)
}

func TestLoadMergedInvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("POLLSMOOTH_CONFIDENCE_PERCENT", "120")

	_, _, err := LoadMerged(Options{IgnoreConfig: true})
	assert.ErrorContains(t, err, "invalid config")
}

func TestProfiles(t *testing.T) {
	root := isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "Default.yaml"), path)

	_, err = InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	_, err = CreateEmptyConfig("2022")
	require.NoError(t, err)
	_, err = CreateEmptyConfig("2022")
	assert.Error(t, err)
	require.NoError(t, SwitchConfig("2022"))

	require.NoError(t, RenameConfig("2022", "federal-2022"))
	label, _ = CurrentLabel()
	assert.Equal(t, "federal-2022", label)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.True(t, list[1].Active)

	switched, err := RemoveConfig("federal-2022")
	require.NoError(t, err)
	assert.True(t, switched)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
}

func TestLoadMergedFromProfile(t *testing.T) {
	isolate(t)
	_, err := InitDefaultConfig()
	require.NoError(t, err)

	path, err := ConfigPathByLabel(DefaultLabel)
	require.NoError(t, err)
	yml := []byte(`output: polls
date_column: Fieldwork
charts:
  - title: Greens primary
    columns: [Primary vote GRN]
    smoother: lowess
    window_days: 60
`)
	require.NoError(t, os.WriteFile(path, yml, 0644))

	cfg, used, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "polls", cfg.Output)
	assert.Equal(t, "Fieldwork", cfg.DateColumn)
	require.Len(t, cfg.Charts, 1)
	assert.Equal(t, "lowess", cfg.Charts[0].Smoother)
	assert.NotEmpty(t, cfg.NumericFields)
}

func TestLoadMergedTableOverride(t *testing.T) {
	isolate(t)
	_, err := InitDefaultConfig()
	require.NoError(t, err)

	path, err := ConfigPathByLabel(DefaultLabel)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("table_index: 2\n"), 0644))

	cfg, _, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.TableIndex)

	first := 0
	cfg, _, err = LoadMerged(Options{TableIndex: &first})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.TableIndex)
}

func TestLoadProfile(t *testing.T) {
	isolate(t)
	_, err := CreateEmptyConfig("senate")
	require.NoError(t, err)

	cfg, err := LoadProfile("senate")
	require.NoError(t, err)
	assert.Len(t, cfg.Charts, 3)
	assert.Equal(t, DefaultURL, cfg.DefaultURL)

	_, err = LoadProfile("missing")
	assert.Error(t, err)
}

func TestAddConfigValidates(t *testing.T) {
	isolate(t)
	src := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(src, []byte("confidence_percent: 10\n"), 0644))
	assert.Error(t, AddConfig("bad", src))

	require.NoError(t, os.WriteFile(src, []byte("output: x\n"), 0644))
	require.NoError(t, AddConfig("good", src))
	_, err := ConfigPathByLabel("good")
	assert.NoError(t, err)
}

func TestCheckLabel(t *testing.T) {
	assert.NoError(t, checkLabel("federal-2025"))
	assert.Error(t, checkLabel(""))
	assert.Error(t, checkLabel("../etc"))
	assert.Error(t, checkLabel(".."))
}
