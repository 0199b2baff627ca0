package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectNameEnv is the environment variable docker compose reads for the
// project name.
const ProjectNameEnv = "COMPOSE_PROJECT_NAME"

// DefaultFileNames lists the compose file names probed in the project
// directory, in the order docker compose prefers them.
var DefaultFileNames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// ErrNoComposeFile is returned when no compose file can be located.
var ErrNoComposeFile = errors.New("no compose file found")

// Project is the resolved declared service group.
type Project struct {
	// Name is the compose project name.
	Name string

	// Dir is the absolute project directory. Compose commands run here.
	Dir string

	// Files are the compose files, absolute, in merge order.
	Files []string

	// Services is the sorted union of service names across Files.
	Services []string
}

// composeFile is the subset of the compose file format that composectl reads.
// Service bodies are left as raw nodes; their contents belong to the runtime.
type composeFile struct {
	Name     string               `yaml:"name"`
	Services map[string]yaml.Node `yaml:"services"`
}

// LoadOptions selects the project to load.
type LoadOptions struct {
	// Dir is the project directory. Defaults to the working directory.
	Dir string

	// Files are explicit compose files, relative to Dir or absolute.
	// When empty the first existing DefaultFileNames entry is used.
	Files []string

	// Name is an explicit project name, overriding every other source.
	Name string
}

// Load resolves the compose files and parses the declared service group.
//
// The project name follows the docker compose precedence: explicit name,
// then COMPOSE_PROJECT_NAME, then the last top-level "name:" among the
// files, then the base name of the project directory.
func Load(opts LoadOptions) (*Project, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory %q: %w", dir, err)
	}

	files, err := ResolveFiles(dir, opts.Files)
	if err != nil {
		return nil, err
	}

	var fileName string
	seen := make(map[string]struct{})
	for _, f := range files {
		parsed, err := parseFile(f)
		if err != nil {
			return nil, err
		}
		if parsed.Name != "" {
			fileName = parsed.Name
		}
		for svc := range parsed.Services {
			seen[svc] = struct{}{}
		}
	}

	services := make([]string, 0, len(seen))
	for svc := range seen {
		services = append(services, svc)
	}
	sort.Strings(services)

	name := opts.Name
	if name == "" {
		name = os.Getenv(ProjectNameEnv)
	}
	if name == "" {
		name = fileName
	}
	if name == "" {
		name = filepath.Base(dir)
	}

	normalized := NormalizeProjectName(name)
	if normalized == "" {
		return nil, fmt.Errorf("invalid project name %q: must contain a lowercase letter or digit", name)
	}

	return &Project{
		Name:     normalized,
		Dir:      dir,
		Files:    files,
		Services: services,
	}, nil
}

// ResolveFiles returns absolute compose file paths. Explicit files must
// exist; otherwise the first DefaultFileNames entry found in dir is used,
// then the dockerComposeFile entries of a devcontainer.json in dir.
func ResolveFiles(dir string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		files := make([]string, 0, len(explicit))
		for _, f := range explicit {
			if strings.TrimSpace(f) == "" {
				continue
			}
			path := f
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrNoComposeFile, path)
			}
			files = append(files, path)
		}
		if len(files) > 0 {
			return files, nil
		}
	}

	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return []string{path}, nil
		}
	}

	files, err := devContainerComposeFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		return files, nil
	}
	return nil, fmt.Errorf("%w in %s (looked for %s)", ErrNoComposeFile, dir, strings.Join(DefaultFileNames, ", "))
}

func parseFile(path string) (*composeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file %s: %w", path, err)
	}

	var parsed composeFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse compose file %s: %w", path, err)
	}
	return &parsed, nil
}

// NormalizeProjectName lowercases name and drops every character docker
// compose does not accept in project names ([a-z0-9_-]). Leading
// separators are trimmed because compose requires a letter or digit first.
func NormalizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "_-")
}
