package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"postgres://x\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 45, cfg.Booking.SlotMinutes)
	assert.Equal(t, 16, cfg.Booking.MaxSlots)
	assert.Equal(t, 23, cfg.Booking.LastStartHour)
	assert.Equal(t, 25, cfg.Booking.ReassignThresholdMinutes)
	assert.Equal(t, 15, cfg.Booking.GracePeriodMinutes)
	assert.Equal(t, ConflictExact, cfg.Booking.ConflictMode)
	assert.Equal(t, time.UTC, cfg.Booking.Location)
	assert.True(t, cfg.Reaper.Enabled)
	assert.Equal(t, time.Minute, cfg.Reaper.Interval)
	assert.Equal(t, "ADMIN", cfg.Auth.AdminRole)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "facility.exchange", cfg.Events.Exchange)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load("config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Asia/Kolkata", cfg.Booking.Location.String())
	assert.Equal(t, 2, cfg.WorkerPool.Size)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FACILITY_DATABASE_DSN", "postgres://from-env")
	t.Setenv("FACILITY_SERVER_PORT", "9090")
	path := writeConfig(t, "database:\n  dsn: \"postgres://from-file\"\nreaper:\n  enabled: false\n  interval_seconds: 5\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-env", cfg.Database.DSN)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Reaper.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Reaper.Interval)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown conflict mode", body: "booking:\n  conflict_mode: fuzzy\n"},
		{name: "unknown timezone", body: "booking:\n  timezone: Mars/Olympus\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestDefault_IsQuiet(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg := Default()

	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 10, cfg.Server.RateLimitIdleMinutes)
	assert.Empty(t, buf.String(), "defaults must not log warnings")
}

func TestLoad_WarnsOnInvalidWorkerPool(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg, err := Load(writeConfig(t, "worker_pool:\n  size: -3\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Contains(t, buf.String(), "worker_pool.size")
}
