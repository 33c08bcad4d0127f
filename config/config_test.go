package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `server:
  listen_addr: ":9090"
  read_timeout: "5s"
  write_timeout: "1m"
  allowed_origins: ["https://payroll.example.com"]

storage:
  driver: SQLite
  path: /var/lib/payroll.db

payroll:
  workers: 4

log:
  level: debug
  format: JSON

metrics:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"https://payroll.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/payroll.db", cfg.Storage.Path)
	assert.Equal(t, 4, cfg.Payroll.Workers)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server.ListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 1, cfg.Payroll.Workers)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorContains(t, err, "read file")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"blank listen addr", `server: {listen_addr: ""}`, "server.listen_addr"},
		{"bad timeout", `server: {read_timeout: "soon"}`, "server.read_timeout"},
		{"unknown driver", `storage: {driver: postgres}`, "storage.driver"},
		{"sqlite without path", `storage: {driver: sqlite, path: ""}`, "storage.path"},
		{"bad level", `log: {level: loud}`, "log.level"},
		{"bad format", `log: {format: xml}`, "log.format"},
		{"bad check interval", `payroll: {check_interval: "daily"}`, "payroll.check_interval"},
		{"negative check interval", `payroll: {check_interval: "-5m"}`, "payroll.check_interval"},
		{"not yaml", "server: [", "parse yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParse_WorkersClampedToOne(t *testing.T) {
	cfg, err := Parse([]byte(`payroll: {workers: 0}`))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Payroll.Workers)
}

func TestParse_AutoPayday(t *testing.T) {
	cfg, err := Parse([]byte(`payroll: {auto_payday: true, check_interval: "10m"}`))
	require.NoError(t, err)

	assert.True(t, cfg.Payroll.AutoPayday)
	assert.Equal(t, 10*time.Minute, cfg.Payroll.CheckInterval)
}

func TestParse_CheckIntervalDefaultsToHour(t *testing.T) {
	cfg, err := Parse([]byte(`payroll: {check_interval: ""}`))
	require.NoError(t, err)

	assert.False(t, cfg.Payroll.AutoPayday)
	assert.Equal(t, time.Hour, cfg.Payroll.CheckInterval)
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "run_id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"run_id":"abc"`)
}
