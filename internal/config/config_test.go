package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvProject, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce.Duration)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvProject, "")

	path := writeTestConfig(t, `
endpoint = "https://req.example.com/graphql"
project = "p1"
page_size = 25
view = "board"
debounce = "250ms"
web_url = "https://req.example.com"
token_command = "pass show reqboard"
log_file = "/tmp/reqboard.log"
debug = true
table_page_size = 0
refresh_shadow_after_move = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://req.example.com/graphql", cfg.Endpoint)
	assert.Equal(t, "p1", cfg.Project)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "board", cfg.View)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce.Duration)
	assert.Equal(t, "pass show reqboard", cfg.TokenCommand)
	assert.True(t, cfg.Debug)
	assert.Zero(t, cfg.TablePage)
	assert.True(t, cfg.RefreshShadowAfterMove)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTestConfig(t, `endpoint = "https://file/graphql"`+"\n"+`project = "file"`)
	t.Setenv(EnvEndpoint, "https://env/graphql")
	t.Setenv(EnvProject, "env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env/graphql", cfg.Endpoint)
	assert.Equal(t, "env", cfg.Project)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeTestConfig(t, `page_size = "ten"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrNoEndpoint)

	cfg.Endpoint = "https://x/graphql"
	require.NoError(t, cfg.Validate())

	cfg.View = "list"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidView)

	cfg.View = "grid"
	cfg.PageSize = 0
	assert.Error(t, cfg.Validate())
}
