package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmr-tortoise/composectl/internal/compose"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// Runtime is the container runtime capability the lifecycle controller
// drives. Every method blocks until the runtime has finished the request.
type Runtime interface {
	// ComposeDown gracefully tears down every declared service.
	ComposeDown(ctx context.Context) error

	// ComposeUp builds (when requested) and starts every declared service.
	ComposeUp(ctx context.Context, opts UpOptions) error

	// ContainerIDs returns the IDs of containers in scope. all includes
	// stopped containers.
	ContainerIDs(ctx context.Context, all bool) ([]string, error)

	// Containers returns details of containers in scope. all includes
	// stopped containers.
	Containers(ctx context.Context, all bool) ([]model.ContainerInfo, error)

	// ForceRemove removes the given containers regardless of their state.
	ForceRemove(ctx context.Context, ids []string) error

	// Close releases resources held by the runtime client.
	Close() error
}

// UpOptions configures ComposeUp.
type UpOptions struct {
	// Build rebuilds service images before starting containers.
	Build bool

	// Detach starts containers in the background.
	Detach bool
}

// Backend selects the Runtime implementation.
type Backend string

const (
	// BackendCLI runs every operation through the docker CLI.
	BackendCLI Backend = "cli"

	// BackendAPI keeps compose verbs on the CLI and uses the Engine API
	// for queries and removal.
	BackendAPI Backend = "api"
)

// ParseBackend converts a string to a Backend.
func ParseBackend(s string) (Backend, error) {
	backend := Backend(strings.ToLower(strings.TrimSpace(s)))
	switch backend {
	case BackendCLI, BackendAPI:
		return backend, nil
	default:
		return "", fmt.Errorf("invalid runtime backend: %q (valid: cli, api)", s)
	}
}

// Options configures New.
type Options struct {
	// Backend selects the implementation. Defaults to BackendCLI.
	Backend Backend

	// Binary is the runtime CLI program. Defaults to "docker".
	Binary string

	// PrivilegeCommand is an optional prefix such as "sudo" or "sudo -n"
	// placed in front of every CLI invocation.
	PrivilegeCommand string

	// Host overrides the daemon address (DOCKER_HOST) when set.
	Host string

	// Project is the declared service group the runtime operates on.
	Project *compose.Project

	// Scope selects which containers queries return.
	Scope model.Scope

	// Runner executes CLI commands. Defaults to an ExecRunner that
	// discards streamed output.
	Runner CommandRunner
}

// New constructs the Runtime selected by opts.Backend.
func New(opts Options) (Runtime, error) {
	if opts.Project == nil {
		return nil, model.NewCLIError(model.KindConfig, "runtime requires a compose project")
	}

	cli := NewCLIRuntime(opts)

	backend := opts.Backend
	if backend == "" {
		backend = BackendCLI
	}

	switch backend {
	case BackendCLI:
		return cli, nil
	case BackendAPI:
		c, err := NewClient(opts.Host)
		if err != nil {
			return nil, err
		}
		return NewEngineRuntime(cli, c, opts.Scope, opts.Project.Name), nil
	default:
		return nil, model.NewCLIError(model.KindConfig,
			fmt.Sprintf("invalid runtime backend %q", backend))
	}
}

// scopedProject returns the project name used to filter queries, or ""
// for host-wide queries.
func scopedProject(scope model.Scope, project string) string {
	if scope == model.ScopeProject {
		return project
	}
	return ""
}
