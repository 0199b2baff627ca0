package docker

import (
	"strings"

	"github.com/docker/docker/api/types/filters"
)

// Docker Compose stamps these labels on every container it creates.
const (
	// LabelComposeProject holds the compose project name.
	LabelComposeProject = "com.docker.compose.project"

	// LabelComposeService holds the compose service name.
	LabelComposeService = "com.docker.compose.service"
)

// projectLabelSelector returns the "key=value" label selector matching
// containers of the given compose project.
func projectLabelSelector(project string) string {
	return LabelComposeProject + "=" + project
}

// projectFilter builds the Engine API filter for a project-scoped query.
// An empty project yields empty filters, which match every container.
func projectFilter(project string) filters.Args {
	if project == "" {
		return filters.NewArgs()
	}
	return filters.NewArgs(filters.Arg("label", projectLabelSelector(project)))
}

// parseLabelList parses the comma separated "k=v" list printed by
// `docker ps --format {{json .}}` in its Labels field.
//
// Label values containing commas are ambiguous in that format; the
// fragment after a comma without "=" is appended to the previous value.
func parseLabelList(s string) map[string]string {
	labels := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return labels
	}

	var lastKey string
	for _, part := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			if lastKey != "" {
				labels[lastKey] += "," + part
			}
			continue
		}
		labels[key] = value
		lastKey = key
	}
	return labels
}
