package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/composectl/internal/docker"
	"github.com/mmr-tortoise/composectl/internal/model"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("composectl", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(newFlags(t, "--project-dir", dir))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectDir)
	assert.Equal(t, model.ScopeAll, cfg.Scope)
	assert.Equal(t, docker.BackendCLI, cfg.Backend)
	assert.Equal(t, "docker", cfg.Binary)
	assert.Empty(t, cfg.PrivilegeCommand)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Zero(t, cfg.LockTimeout)
	assert.Empty(t, cfg.ConfigFile)
	assert.Nil(t, cfg.ComposeFiles)
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(newFlags(t,
		"--project-dir", dir,
		"-f", "base.yml", "-f", "override.yml",
		"-p", "shop",
		"--scope", "project",
		"--backend", "api",
		"--sudo",
		"--lock-timeout", "45s",
		"--notify-url", "logger://",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"base.yml", "override.yml"}, cfg.ComposeFiles)
	assert.Equal(t, "shop", cfg.ProjectName)
	assert.Equal(t, model.ScopeProject, cfg.Scope)
	assert.Equal(t, docker.BackendAPI, cfg.Backend)
	assert.Equal(t, DefaultSudoCommand, cfg.PrivilegeCommand)
	assert.Equal(t, 45*time.Second, cfg.LockTimeout)
	assert.Equal(t, []string{"logger://"}, cfg.NotifyURLs)
}

func TestLoad_ExplicitPrivilegeCommandWinsOverSudo(t *testing.T) {
	cfg, err := Load(newFlags(t, "--project-dir", t.TempDir(), "--sudo", "--privilege-command", "doas"))
	require.NoError(t, err)
	assert.Equal(t, "doas", cfg.PrivilegeCommand)
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COMPOSECTL_PROJECT_NAME", "fromenv")
	t.Setenv("COMPOSECTL_PROJECT_FILES", "a.yml, b.yml")
	t.Setenv("COMPOSECTL_RUNTIME_PRIVILEGE_COMMAND", "sudo -n")
	t.Setenv("COMPOSECTL_LOCK_TIMEOUT", "2m")
	t.Setenv("COMPOSECTL_NOTIFY_URLS", "logger://,generic://example.com")

	cfg, err := Load(newFlags(t, "--project-dir", dir))
	require.NoError(t, err)

	assert.Equal(t, "fromenv", cfg.ProjectName)
	assert.Equal(t, []string{"a.yml", "b.yml"}, cfg.ComposeFiles)
	assert.Equal(t, "sudo -n", cfg.PrivilegeCommand)
	assert.Equal(t, 2*time.Minute, cfg.LockTimeout)
	assert.Equal(t, []string{"logger://", "generic://example.com"}, cfg.NotifyURLs)
}

func TestLoad_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv("COMPOSECTL_PROJECT_NAME", "fromenv")

	cfg, err := Load(newFlags(t, "--project-dir", t.TempDir(), "-p", "fromflag"))
	require.NoError(t, err)
	assert.Equal(t, "fromflag", cfg.ProjectName)
}

func TestLoad_JSONCFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "composectl.jsonc"), `{
  // teardown everything on this host
  "project": {
    "name": "shop",
    "scope": "all",
  },
  /* run through sudo */
  "runtime": {"privilege_command": "sudo -n", "backend": "api"},
  "notify": {"urls": ["logger://"], "title": "ops"},
}`)

	cfg, err := Load(newFlags(t, "--project-dir", dir))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "composectl.jsonc"), cfg.ConfigFile)
	assert.Equal(t, "shop", cfg.ProjectName)
	assert.Equal(t, "sudo -n", cfg.PrivilegeCommand)
	assert.Equal(t, docker.BackendAPI, cfg.Backend)
	assert.Equal(t, []string{"logger://"}, cfg.NotifyURLs)
	assert.Equal(t, "ops", cfg.NotifyTitle)
}

func TestLoad_YAMLFileAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
project:
  name: fromfile
  files: [compose.yaml, compose.prod.yaml]
lock:
  timeout: 10s
log:
  level: debug
`)
	t.Setenv("COMPOSECTL_LOG_LEVEL", "warn")

	cfg, err := Load(newFlags(t, "--project-dir", dir, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "fromfile", cfg.ProjectName)
	assert.Equal(t, []string{"compose.yaml", "compose.prod.yaml"}, cfg.ComposeFiles)
	assert.Equal(t, 10*time.Second, cfg.LockTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	badJSON := filepath.Join(dir, "bad.json")
	writeFile(t, badJSON, `{"project": `)
	toml := filepath.Join(dir, "composectl.toml")
	writeFile(t, toml, `x = 1`)

	tests := []struct {
		name string
		args []string
	}{
		{"missing explicit config", []string{"--config", filepath.Join(dir, "nope.yaml")}},
		{"malformed config", []string{"--config", badJSON}},
		{"unsupported config type", []string{"--config", toml}},
		{"invalid scope", []string{"--scope", "cluster"}},
		{"invalid backend", []string{"--backend", "podman"}},
		{"empty binary", []string{"--docker-binary", " "}},
		{"negative lock timeout", []string{"--lock-timeout", "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, append([]string{"--project-dir", dir}, tt.args...)...))
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrConfig)
			assert.Equal(t, model.ExitConfigError, model.ExitCodeOf(err))
		})
	}
}

func TestLoad_NilFlags(t *testing.T) {
	t.Setenv("COMPOSECTL_PROJECT_DIR", t.TempDir())
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "docker", cfg.Binary)
}
