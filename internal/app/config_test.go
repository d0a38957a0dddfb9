package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 0.20, cfg.VATRate)
	require.Equal(t, "Company", cfg.LedgerDefaultOwner)
	require.Equal(t, "£", cfg.CurrencySymbol)
	require.Equal(t, "fleet.changed", cfg.SnapshotChannel)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("VAT_RATE", "0.05")
	t.Setenv("LEDGER_DEFAULT_OWNER", "  Fleet Ltd ")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 0.05, cfg.VATRate)
	require.Equal(t, "Fleet Ltd", cfg.LedgerDefaultOwner)
	require.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("VAT_RATE", "1.5")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "VAT_RATE")

	t.Setenv("VAT_RATE", "0.2")
	t.Setenv("LEDGER_DEFAULT_OWNER", " ")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "LEDGER_DEFAULT_OWNER")

	t.Setenv("LEDGER_DEFAULT_OWNER", "Company")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "LOG_LEVEL")
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})

	logger.Info("hidden")
	logger.Warn("shown", slog.String("owner", "A"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, "A", line["owner"])
}
