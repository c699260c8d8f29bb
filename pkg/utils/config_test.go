package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/envelope"
	"github.com/oxygene76/vb3d-sim/pkg/scene"
)

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Scene.Mode = scene.ModeLaunch
	cfg.Scene.Net = court.PresetWomen
	cfg.Scene.Launch.Speed = 18
	cfg.Scene.Envelope.Blockers = &envelope.Block{
		Count: 2, AnchorY: 3.2, Gap: 0.05, HandsWidth: 0.6, HandGap: 0.03, Reach: 0.5, PressDepth: 0.15,
	}
	cfg.Server.Port = 9090
	cfg.Log.Level = "debug"

	written, err := SaveConfig(cfg, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigPartialFileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  set:\n    t_hit: 0.8\nlog:\n  level: warn\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Scene.Set.THit)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, scene.DefaultConfig().Set.Contact, cfg.Scene.Set.Contact)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0644))
	t.Setenv("VB3D_SERVER_PORT", "7001")
	t.Setenv("VB3D_SCENE_NET", "women")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, court.PresetWomen, cfg.Scene.Net)
}

func TestLoadConfigAcceptsLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "ERROR"} {
		t.Run(level, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("log:\n  level: "+level+"\n"), 0644))
			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, level, cfg.Log.Level)
		})
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad level":   "log:\n  level: loud\n",
		"bad port":    "server:\n  port: 70000\n",
		"bad t_hit":   "scene:\n  set:\n    t_hit: 0.01\n",
		"huge grid":   "scene:\n  envelope:\n    nx: 1000000\n",
		"bad net":     "scene:\n  net: junior\n",
		"broken yaml": "scene: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
