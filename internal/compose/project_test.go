package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file under dir with the given content and returns
// its absolute path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseCompose = `
services:
  web:
    build: .
    ports:
      - "8080:80"
  db:
    image: postgres:16
`

func TestLoad_DefaultFile(t *testing.T) {
	t.Setenv(ProjectNameEnv, "")
	dir := filepath.Join(t.TempDir(), "My.Stack")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := writeFile(t, dir, "docker-compose.yml", baseCompose)

	project, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "mystack", project.Name, "directory name is normalized")
	assert.Equal(t, dir, project.Dir)
	assert.Equal(t, []string{path}, project.Files)
	assert.Equal(t, []string{"db", "web"}, project.Services)
}

func TestLoad_PrefersComposeYAML(t *testing.T) {
	t.Setenv(ProjectNameEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, "docker-compose.yml", baseCompose)
	preferred := writeFile(t, dir, "compose.yaml", "services:\n  only:\n    image: alpine\n")

	project, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{preferred}, project.Files)
	assert.Equal(t, []string{"only"}, project.Services)
}

func TestLoad_MergesExplicitFiles(t *testing.T) {
	t.Setenv(ProjectNameEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, "base.yml", "name: base\n"+baseCompose)
	writeFile(t, dir, "override.yml", "name: Override\nservices:\n  worker:\n    image: busybox\n  web:\n    environment:\n      DEBUG: \"1\"\n")

	project, err := Load(LoadOptions{Dir: dir, Files: []string{"base.yml", "override.yml"}})
	require.NoError(t, err)

	assert.Equal(t, "override", project.Name, "last top-level name wins")
	assert.Equal(t, []string{"db", "web", "worker"}, project.Services)
	require.Len(t, project.Files, 2)
	assert.Equal(t, filepath.Join(dir, "override.yml"), project.Files[1])
}

func TestLoad_NamePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compose.yml", "name: fromfile\n"+baseCompose)

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv(ProjectNameEnv, "fromenv")
		project, err := Load(LoadOptions{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, "fromenv", project.Name)
	})

	t.Run("explicit beats env", func(t *testing.T) {
		t.Setenv(ProjectNameEnv, "fromenv")
		project, err := Load(LoadOptions{Dir: dir, Name: "explicit"})
		require.NoError(t, err)
		assert.Equal(t, "explicit", project.Name)
	})

	t.Run("file name without env", func(t *testing.T) {
		t.Setenv(ProjectNameEnv, "")
		project, err := Load(LoadOptions{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, "fromfile", project.Name)
	})
}

func TestLoad_NoComposeFile(t *testing.T) {
	_, err := Load(LoadOptions{Dir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoComposeFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compose.yml", baseCompose)

	_, err := Load(LoadOptions{Dir: dir, Files: []string{"missing.yml"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoComposeFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compose.yml", "services: [unclosed\n")

	_, err := Load(LoadOptions{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse compose file")
}

func TestNormalizeProjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "myapp", want: "myapp"},
		{in: "My App", want: "myapp"},
		{in: "_hidden-stack", want: "hidden-stack"},
		{in: "web.v2", want: "webv2"},
		{in: "under_score", want: "under_score"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProjectName(tt.in))
		})
	}
}

func TestLoad_RejectsUnusableName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compose.yaml", baseCompose)

	_, err := Load(LoadOptions{Dir: dir, Name: "__.."})
	assert.Error(t, err)
}
