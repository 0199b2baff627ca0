package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// DevContainerPaths lists the devcontainer.json locations probed when a
// project directory has no compose file of its own, in priority order.
var DevContainerPaths = []string{
	filepath.Join(".devcontainer", "devcontainer.json"),
	".devcontainer.json",
}

// devContainer is the subset of devcontainer.json composectl reads.
// dockerComposeFile may be a string or an array of strings.
type devContainer struct {
	DockerComposeFile any `json:"dockerComposeFile,omitempty"`
}

// devContainerComposeFiles returns the compose files referenced by the
// first devcontainer.json found in dir, resolved against the directory of
// that file. It returns nil when there is no devcontainer.json or it names
// no compose file.
func devContainerComposeFiles(dir string) ([]string, error) {
	for _, rel := range DevContainerPaths {
		path := filepath.Join(dir, rel)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		// devcontainer.json is JSONC: comments and trailing commas are common.
		var raw devContainer
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		base := filepath.Dir(path)
		var files []string
		for _, f := range composeFileList(raw.DockerComposeFile) {
			if !filepath.IsAbs(f) {
				f = filepath.Join(base, f)
			}
			if _, err := os.Stat(f); err != nil {
				return nil, fmt.Errorf("%w: %s (referenced by %s)", ErrNoComposeFile, f, path)
			}
			files = append(files, f)
		}
		return files, nil
	}
	return nil, nil
}

// composeFileList normalizes the string-or-array dockerComposeFile value.
func composeFileList(v any) []string {
	switch v := v.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		files := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				files = append(files, s)
			}
		}
		return files
	default:
		return nil
	}
}
