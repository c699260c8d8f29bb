package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/vb3d-sim/internal/types"
	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/kinematics"
	"github.com/oxygene76/vb3d-sim/pkg/utils"
)

// Each test runs a different subcommand: cobra keeps parsed flag state on
// the package-level commands between executions.

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := utils.DefaultConfig()
	cfg.Log.Level = "error"
	_, err := utils.SaveConfig(cfg, configPath)
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", configPath))
	err = rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vb3d "+version+"\n", out)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets", "--format", "json")
	require.NoError(t, err)

	var presets []court.Net
	require.NoError(t, json.Unmarshal([]byte(out), &presets))
	assert.Equal(t, court.Presets(), presets)
}

func TestSimulateSetSummaryAndSamples(t *testing.T) {
	samples := filepath.Join(t.TempDir(), "flight.jsonl")
	out, err := execute(t, "simulate", "set", "--net", "women", "--format", "summary", "--samples-file", samples)
	require.NoError(t, err)

	assert.Contains(t, out, "Mode:            set")
	assert.Contains(t, out, "Net height:      2.24 m")
	assert.Contains(t, out, "Samples:         86")
	assert.Contains(t, out, "Legal spikes:")
	assert.NotContains(t, out, "WARN")

	f, err := os.Open(samples)
	require.NoError(t, err)
	defer f.Close()

	var lines []kinematics.Sample
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var s kinematics.Sample
		require.NoError(t, json.Unmarshal(sc.Bytes(), &s))
		lines = append(lines, s)
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 86)
	assert.Equal(t, 0.0, lines[0].Time)
	assert.Equal(t, -3.0, lines[0].Position.X)
}

func TestSimulateLaunchJSON(t *testing.T) {
	out, err := execute(t, "simulate", "launch", "--speed", "12", "--t-end", "1.5")
	require.NoError(t, err)

	var sc types.Scene
	require.NoError(t, json.Unmarshal([]byte(out), &sc))
	assert.Equal(t, "launch", sc.Metrics.Mode)
	assert.Equal(t, 151, sc.Metrics.SampleCount)
	assert.InDelta(t, 12, sc.Metrics.LaunchSpeed, 1e-9)
}

func TestEnvelopeCommand(t *testing.T) {
	out, err := execute(t, "envelope", "--contact=-0.5,0,3.5", "--format", "json", "--stats-only")
	require.NoError(t, err)

	var report envelopeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Nil(t, report.Result)
	assert.Greater(t, report.Stats.Legal, 0)
	assert.InDelta(t, 2.43, report.NetHeight, 1e-12)
	assert.GreaterOrEqual(t, report.Stats.MinClearance, 0.0)
}

func TestRenderCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "scene.json")
	_, err := execute(t, "render", "--mode", "launch", "--output", output, "--compact", "--dt", "0")
	require.Error(t, err)
	assert.NoFileExists(t, output, "a rejected config must not leave an output file behind")

	_, err = execute(t, "render", "--mode", "launch", "--output", output, "--compact", "--dt", "0.01")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var sc types.Scene
	require.NoError(t, json.Unmarshal(data, &sc))
	assert.Equal(t, "launch", sc.Metrics.Mode)
	assert.NotEmpty(t, sc.Lines)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vb3d.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", "--config", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), path)

	cfg, err := utils.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, utils.DefaultConfig(), cfg)

	rootCmd.SetArgs([]string{"init", "--config", path})
	assert.Error(t, rootCmd.Execute())
}
