package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 1.0, cfg.Scheduler.EffectiveCapacityRatio)
	assert.Equal(t, "late_start", cfg.Scheduler.CandidateStrategy)
	assert.Equal(t, "06:00", cfg.Scheduler.LateStartThreshold)
	assert.True(t, cfg.Scheduler.RejectOverlaps)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.SaveDebounce)
	assert.Equal(t, BackupDriverLocal, cfg.Backup.Driver)
	assert.True(t, cfg.JWT.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SCHEDULER_EFFECTIVE_CAPACITY_RATIO", "0.85")
	t.Setenv("SCHEDULER_CANDIDATE_STRATEGY", "Anticipation")
	t.Setenv("SCHEDULER_SAVE_DEBOUNCE", "2s")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.85, cfg.Scheduler.EffectiveCapacityRatio)
	assert.Equal(t, "anticipation", cfg.Scheduler.CandidateStrategy)
	assert.Equal(t, 2*time.Second, cfg.Scheduler.SaveDebounce)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsOutOfRangeRatio(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SCHEDULER_EFFECTIVE_CAPACITY_RATIO", "1.7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Scheduler.EffectiveCapacityRatio)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
