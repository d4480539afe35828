package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[world]
id = 3
width = 32

[store]
backend = "bolt"
bolt_path = "/var/lib/alivechess/world.db"
load_timeout = "500ms"
`))
	require.NoError(t, err)
	assert.Equal(t, int32(3), cfg.World.ID)
	assert.Equal(t, 32, cfg.World.Width)
	assert.Equal(t, 64, cfg.World.Height, "default kept")
	assert.Equal(t, BackendBolt, cfg.Store.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.LoadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5*time.Minute, cfg.Server.SaveInterval)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"backend": "[store]\nbackend = \"redis\"\n",
		"size":    "[world]\nwidth = 0\n",
		"bolt":    "[store]\nbackend = \"bolt\"\nbolt_path = \"\"\n",
		"syntax":  "[world\n",
		"tick":    "[server]\nflush_interval = \"0s\"\n",
		"sample":  "[tracing]\nsample_ratio = 1.5\n",
	} {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPathOverride(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "config/server.toml", Path("config/server.toml"))
	t.Setenv(EnvPath, "/etc/alivechess.toml")
	assert.Equal(t, "/etc/alivechess.toml", Path("config/server.toml"))
}
