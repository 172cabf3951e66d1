package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSettingsURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8080/", settingsURL(":8080"))
	assert.Equal(t, "http://localhost:9000/", settingsURL("localhost:9000"))
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n[camera]\nfps = 20\n"), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--fps", "12", "--tray=false"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr, "unset flag keeps file value")
	assert.Equal(t, 12, cfg.Camera.FPS)
	assert.False(t, cfg.Tray)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--fps", "0"}))

	_, err := loadConfig(cmd)
	require.Error(t, err)
}

func TestConfigCmd_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mudra", "config.toml")

	out := execute(t, "config", "--config", path, "--write")
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	out = execute(t, "config", "--config", path, "--write")
	assert.Contains(t, out, "already exists")
}

func TestConfigCmd_Print(t *testing.T) {
	out := execute(t, "config", "--config", filepath.Join(t.TempDir(), "none.toml"))
	assert.Contains(t, out, "[camera]")
	assert.Contains(t, out, "[gesture]")
}

func TestEventsCmd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "mudra.db")
	t.Setenv("MUDRA_DB", dbPath)

	st, err := store.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Events().Record(&store.Event{Command: "play-pause", Category: "thumb-up", Delivered: true}))
	require.NoError(t, st.Events().Record(&store.Event{Command: "volume-up", Category: "pinch", Delivered: false}))
	require.NoError(t, st.Close())

	cfgPath := filepath.Join(dir, "config.toml")

	out := execute(t, "events", "--config", cfgPath)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "volume-up")

	out = execute(t, "events", "--config", cfgPath, "--stats")
	assert.Contains(t, out, "play-pause")

	out = execute(t, "events", "--config", cfgPath, "--clear")
	assert.Contains(t, out, "deleted 2 events")
}

func TestPluginsCmd_Empty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MUDRA_PLUGIN_DIR", filepath.Join(dir, "plugins"))

	out := execute(t, "plugins", "--config", filepath.Join(dir, "config.toml"))
	assert.Contains(t, out, "no plugins in")
}
