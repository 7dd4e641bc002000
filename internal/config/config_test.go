package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "paiban", cfg.App.Name)
	assert.Equal(t, 7012, cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.TimeLimit)
	assert.Equal(t, 14, cfg.Planner.Days)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	opt := cfg.Scheduler.OptimizerConfig()
	assert.Equal(t, int64(37), opt.Seed)
	assert.Equal(t, 4, opt.ParallelWorkers)
	assert.InDelta(t, 0.999, opt.CoolingRate, 1e-12)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SCHEDULER_TIMEOUT", "5s")
	t.Setenv("SCHEDULER_PARALLEL_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
	assert.Equal(t, 5*time.Second, cfg.Scheduler.TimeLimit)
	assert.Equal(t, 8, cfg.Scheduler.OptimizerConfig().ParallelWorkers)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SCHEDULER_SWAP_PROBABILITY", "1.5")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SCHEDULER_SWAP_PROBABILITY", "0.5")
	t.Setenv("APP_PORT", "not-a-port")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paiban.yaml")
	content := `
app:
  port: 8080
scheduler:
  max_steps: 500
  time_limit: 2s
planner:
  start_date: "2026-01-05"
  days: 7
  locations:
    - name: affaire
      required_skill: Expert
constraints:
  max_shifts_per_week: 4
  enable_night_shift_limit: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 500, cfg.Scheduler.MaxSteps)
	assert.Equal(t, 2*time.Second, cfg.Scheduler.TimeLimit)
	// 文件未覆盖的字段保持默认值
	assert.Equal(t, 32, cfg.Scheduler.MoveSampleBreadth)
	assert.Equal(t, 4, cfg.Constraints["max_shifts_per_week"])
	assert.Equal(t, true, cfg.Constraints["enable_night_shift_limit"])

	pc, err := cfg.Planner.PlannerConfig()
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", pc.StartDate)
	assert.Equal(t, 7, pc.Days)
	assert.Equal(t, []planner.Location{{Name: "affaire", RequiredSkill: "Expert"}}, pc.Locations)
	assert.Len(t, pc.Slots, 3)
	assert.Equal(t, time.UTC, pc.Location)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromPath(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("planner:\n  start_date: 05/01/2026\n"), 0o644))
	_, err = LoadFromPath(bad)
	assert.Error(t, err)

	tz := filepath.Join(dir, "tz.yaml")
	require.NoError(t, os.WriteFile(tz, []byte("planner:\n  timezone: Mars/Olympus\n"), 0o644))
	_, err = LoadFromPath(tz)
	assert.Error(t, err)
}
