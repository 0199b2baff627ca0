package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFiles_DevContainerFallback(t *testing.T) {
	dir := t.TempDir()
	dcDir := filepath.Join(dir, ".devcontainer")
	require.NoError(t, os.Mkdir(dcDir, 0o755))
	writeFile(t, dcDir, "docker-compose.yml", baseCompose)
	writeFile(t, dir, "compose.override.yml", "services:\n  cache:\n    image: redis\n")
	writeFile(t, dcDir, "devcontainer.json", `{
  // VS Code dev container
  "name": "shop",
  "dockerComposeFile": ["docker-compose.yml", "../compose.override.yml"],
  "service": "web",
}`)

	files, err := ResolveFiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dcDir, "docker-compose.yml"),
		filepath.Join(dir, "compose.override.yml"),
	}, files)

	t.Setenv(ProjectNameEnv, "")
	project, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "db", "web"}, project.Services)
}

func TestResolveFiles_DevContainerSingleString(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stack.yml", baseCompose)
	writeFile(t, dir, ".devcontainer.json", `{"dockerComposeFile": "stack.yml"}`)

	files, err := ResolveFiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "stack.yml")}, files)
}

func TestResolveFiles_DefaultFileBeatsDevContainer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compose.yaml", baseCompose)
	writeFile(t, dir, ".devcontainer.json", `{"dockerComposeFile": "missing.yml"}`)

	files, err := ResolveFiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "compose.yaml")}, files)
}

func TestResolveFiles_DevContainerErrors(t *testing.T) {
	t.Run("missing referenced file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".devcontainer.json", `{"dockerComposeFile": "missing.yml"}`)
		_, err := ResolveFiles(dir, nil)
		assert.ErrorIs(t, err, ErrNoComposeFile)
	})

	t.Run("image based devcontainer", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".devcontainer.json", `{"image": "golang:1.25"}`)
		_, err := ResolveFiles(dir, nil)
		assert.ErrorIs(t, err, ErrNoComposeFile)
	})

	t.Run("malformed", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".devcontainer.json", `{"dockerComposeFile": [`)
		_, err := ResolveFiles(dir, nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoComposeFile)
	})
}

func TestComposeFileList(t *testing.T) {
	assert.Nil(t, composeFileList(nil))
	assert.Nil(t, composeFileList(""))
	assert.Nil(t, composeFileList(42.0))
	assert.Equal(t, []string{"a.yml"}, composeFileList("a.yml"))
	assert.Equal(t, []string{"a.yml", "b.yml"}, composeFileList([]any{"a.yml", 1.0, "", "b.yml"}))
}
