package config

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[awareness]
default_range = 64.5

[simulation]
drifters = 10
tick_rate = "50ms"

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64.5, cfg.Awareness.DefaultRange)
	require.Equal(t, 1024.0, cfg.Awareness.AwareRange, "untouched keys keep defaults")
	require.Equal(t, 16, cfg.Awareness.NodeCapacity)
	require.Equal(t, 10, cfg.Simulation.Drifters)
	require.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	require.Equal(t, "json", cfg.Logging.Format)
	require.NotZero(t, cfg.Server.StartTime)
}

func TestDefaultMatchesOriginalThreshold(t *testing.T) {
	cfg := Default()
	require.Equal(t, math.Sqrt(200), cfg.Awareness.DefaultRange)
	require.Equal(t, 8192.0, cfg.Awareness.WorldExtent)
	require.NoError(t, cfg.validate())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative default range": "[awareness]\ndefault_range = -1\n",
		"zero capacity":          "[awareness]\nnode_capacity = 0\n",
		"player fraction":        "[simulation]\nplayer_fraction = 1.5\n",
		"malformed":              "[awareness\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
