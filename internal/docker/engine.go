package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/composectl/internal/model"
)

// EngineRuntime implements Runtime with compose verbs on the CLI and
// container queries and removal on the Docker Engine API.
type EngineRuntime struct {
	compose *CLIRuntime
	client  *Client
	project string
}

// NewEngineRuntime combines a CLIRuntime for compose verbs with an Engine
// API client. Queries are scoped to project when scope is ScopeProject.
func NewEngineRuntime(cli *CLIRuntime, c *Client, scope model.Scope, project string) *EngineRuntime {
	return &EngineRuntime{
		compose: cli,
		client:  c,
		project: scopedProject(scope, project),
	}
}

// ComposeDown delegates to the CLI. The daemon is pinged first so an
// unreachable daemon is reported as RuntimeUnavailable before compose runs.
func (r *EngineRuntime) ComposeDown(ctx context.Context) error {
	if err := r.client.Ping(ctx); err != nil {
		return err
	}
	return r.compose.ComposeDown(ctx)
}

// ComposeUp delegates to the CLI.
func (r *EngineRuntime) ComposeUp(ctx context.Context, opts UpOptions) error {
	return r.compose.ComposeUp(ctx, opts)
}

// ContainerIDs lists container IDs through the Engine API.
func (r *EngineRuntime) ContainerIDs(ctx context.Context, all bool) ([]string, error) {
	summaries, err := r.list(ctx, all)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// Containers lists containers through the Engine API.
func (r *EngineRuntime) Containers(ctx context.Context, all bool) ([]model.ContainerInfo, error) {
	summaries, err := r.list(ctx, all)
	if err != nil {
		return nil, err
	}
	result := make([]model.ContainerInfo, 0, len(summaries))
	for _, s := range summaries {
		result = append(result, summaryToInfo(s))
	}
	return result, nil
}

func (r *EngineRuntime) list(ctx context.Context, all bool) ([]container.Summary, error) {
	summaries, err := r.client.inner.ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: projectFilter(r.project),
	})
	if err != nil {
		return nil, classifyAPIError(ctx, "list containers", err)
	}
	return summaries, nil
}

// ForceRemove removes every container with Force set. Removal continues
// past individual failures, which are joined into the returned error.
func (r *EngineRuntime) ForceRemove(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		logrus.WithField("container", id).Debug("Force removing container")
		err := r.client.inner.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return classifyAPIError(ctx,
		fmt.Sprintf("force remove %d of %d container(s)", len(errs), len(ids)),
		errors.Join(errs...))
}

// Close releases the Engine API client.
func (r *EngineRuntime) Close() error {
	return r.client.Close()
}

// summaryToInfo converts an Engine API container summary to the domain
// model. The API returns names with a leading "/", which is stripped.
func summaryToInfo(s container.Summary) model.ContainerInfo {
	name := ""
	if len(s.Names) > 0 {
		name = strings.TrimPrefix(s.Names[0], "/")
	}
	return model.ContainerInfo{
		ContainerID:   s.ID,
		ContainerName: name,
		Image:         s.Image,
		ServiceName:   s.Labels[LabelComposeService],
		Project:       s.Labels[LabelComposeProject],
		State:         model.ContainerState(s.State),
		Status:        s.Status,
		Labels:        s.Labels,
	}
}
