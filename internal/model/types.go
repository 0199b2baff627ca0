package model

import (
	"fmt"
	"strings"
)

// ContainerState is the short state string reported by the container
// runtime for a single container ("running", "exited", "created", ...).
type ContainerState string

const (
	// StateRunning is the state of a container whose main process is alive.
	StateRunning ContainerState = "running"

	// StateExited is the state of a container whose main process has ended.
	StateExited ContainerState = "exited"

	// StateCreated is the state of a container that was never started.
	StateCreated ContainerState = "created"
)

// String returns the string representation of ContainerState.
func (s ContainerState) String() string {
	return string(s)
}

// IsRunning reports whether the state counts as running.
func (s ContainerState) IsRunning() bool {
	return s == StateRunning
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the runtime, not persisted.
type ContainerInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name,
	// without the leading "/" the Engine API adds.
	ContainerName string `json:"containerName"`

	// Image is the image reference the container was created from.
	Image string `json:"image,omitempty"`

	// ServiceName is the Docker Compose service name, if applicable.
	ServiceName string `json:"serviceName,omitempty"`

	// Project is the Docker Compose project name, if applicable.
	Project string `json:"project,omitempty"`

	// State is the short container state (e.g., "running", "exited").
	State ContainerState `json:"state"`

	// Status is the human-readable status (e.g., "Up 3 minutes").
	Status string `json:"status,omitempty"`

	// Labels is the full set of Docker labels on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// ShortID returns the first 12 characters of the container ID, the same
// abbreviation the Docker CLI prints.
func (c ContainerInfo) ShortID() string {
	const shortLen = 12
	if len(c.ContainerID) <= shortLen {
		return c.ContainerID
	}
	return c.ContainerID[:shortLen]
}

// StopOutcome identifies which branch a StopAll run took.
//
// There are exactly two outcomes. A query that fails or cannot be parsed
// is an error, not a third outcome.
type StopOutcome string

const (
	// OutcomeAllDown means the runtime reported no containers after the
	// graceful teardown, so no removal was issued.
	OutcomeAllDown StopOutcome = "all-down"

	// OutcomeForceRemoved means containers lingered after the graceful
	// teardown and were removed with a single forceful removal.
	OutcomeForceRemoved StopOutcome = "force-removed"
)

// String returns the string representation of StopOutcome.
func (o StopOutcome) String() string {
	return string(o)
}

// Message returns the status line printed for the outcome.
func (o StopOutcome) Message() string {
	switch o {
	case OutcomeAllDown:
		return "all container is down"
	case OutcomeForceRemoved:
		return "containers forcefully removed"
	default:
		return fmt.Sprintf("unknown stop outcome %q", string(o))
	}
}

// StopResult is the outcome of a StopAll run.
type StopResult struct {
	// Outcome is the branch taken after the container query.
	Outcome StopOutcome `json:"outcome"`

	// Removed lists the container IDs passed to the forceful removal.
	// Empty when Outcome is OutcomeAllDown.
	Removed []string `json:"removed,omitempty"`
}

// RestartResult is the outcome of a RestartAll run.
type RestartResult struct {
	// Services is the declared service group that was rebuilt and started.
	Services []string `json:"services"`

	// Running is the status listing taken after the services were started.
	Running []ContainerInfo `json:"running"`
}

// Summary returns a one-line description of the restart, suitable for
// notifications.
func (r RestartResult) Summary() string {
	return fmt.Sprintf("restarted %d service(s) [%s], %d container(s) running",
		len(r.Services), strings.Join(r.Services, ", "), len(r.Running))
}

// Summary returns a one-line description of the stop, suitable for
// notifications.
func (r StopResult) Summary() string {
	if r.Outcome == OutcomeForceRemoved {
		return fmt.Sprintf("%s (%d)", r.Outcome.Message(), len(r.Removed))
	}
	return r.Outcome.Message()
}

// Scope selects which containers the runtime queries see.
type Scope string

const (
	// ScopeAll queries every container known to the runtime host.
	ScopeAll Scope = "all"

	// ScopeProject restricts queries to containers labelled with the
	// compose project name.
	ScopeProject Scope = "project"
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	return string(s)
}

// ParseScope converts a string to a Scope.
// Returns an error if the string does not match any valid scope.
func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(s)))
	switch scope {
	case ScopeAll, ScopeProject:
		return scope, nil
	default:
		return "", fmt.Errorf("invalid scope: %q (valid: all, project)", s)
	}
}
