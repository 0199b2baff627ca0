package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mmr-tortoise/composectl/internal/compose"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// defaultBinary is the runtime CLI used when none is configured.
const defaultBinary = "docker"

// CLIRuntime implements Runtime by invoking the docker CLI:
//
//	docker compose -p <project> -f <file>... down
//	docker compose -p <project> -f <file>... up --build --detach
//	docker ps --all --quiet --no-trunc [--filter label=...]
//	docker rm --force <id>...
type CLIRuntime struct {
	runner    CommandRunner
	binary    string
	privilege []string
	host      string
	project   *compose.Project
	scope     model.Scope
}

// NewCLIRuntime creates a CLIRuntime from opts. Backend is ignored.
func NewCLIRuntime(opts Options) *CLIRuntime {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	binary := opts.Binary
	if binary == "" {
		binary = defaultBinary
	}
	scope := opts.Scope
	if scope == "" {
		scope = model.ScopeAll
	}
	return &CLIRuntime{
		runner:    runner,
		binary:    binary,
		privilege: strings.Fields(opts.PrivilegeCommand),
		host:      opts.Host,
		project:   opts.Project,
		scope:     scope,
	}
}

// ComposeDown runs "docker compose down" for the project.
func (r *CLIRuntime) ComposeDown(ctx context.Context) error {
	args := append(r.composeArgs(), "down")
	return r.run(ctx, "docker compose down", args)
}

// ComposeUp runs "docker compose up" for the project.
func (r *CLIRuntime) ComposeUp(ctx context.Context, opts UpOptions) error {
	args := append(r.composeArgs(), "up")
	if opts.Build {
		args = append(args, "--build")
	}
	if opts.Detach {
		args = append(args, "--detach")
	}
	return r.run(ctx, "docker compose up", args)
}

// ContainerIDs runs "docker ps --quiet" and returns one ID per line.
func (r *CLIRuntime) ContainerIDs(ctx context.Context, all bool) ([]string, error) {
	args := r.psArgs(all)
	args = append(args, "--quiet")

	out, err := r.output(ctx, "docker ps", args)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, line := range strings.Split(string(out), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// psRow is one line of `docker ps --format {{json .}}`.
type psRow struct {
	ID     string `json:"ID"`
	Names  string `json:"Names"`
	Image  string `json:"Image"`
	State  string `json:"State"`
	Status string `json:"Status"`
	Labels string `json:"Labels"`
}

// Containers runs "docker ps --format {{json .}}" and decodes each line.
func (r *CLIRuntime) Containers(ctx context.Context, all bool) ([]model.ContainerInfo, error) {
	args := r.psArgs(all)
	args = append(args, "--format", "{{json .}}")

	out, err := r.output(ctx, "docker ps", args)
	if err != nil {
		return nil, err
	}

	var result []model.ContainerInfo
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row psRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, model.WrapCLIError(model.KindCommandFailed,
				fmt.Sprintf("docker ps returned unexpected output %q", line), err)
		}
		result = append(result, row.toInfo())
	}
	return result, nil
}

func (row psRow) toInfo() model.ContainerInfo {
	labels := parseLabelList(row.Labels)
	name, _, _ := strings.Cut(row.Names, ",")
	return model.ContainerInfo{
		ContainerID:   row.ID,
		ContainerName: name,
		Image:         row.Image,
		ServiceName:   labels[LabelComposeService],
		Project:       labels[LabelComposeProject],
		State:         model.ContainerState(row.State),
		Status:        row.Status,
		Labels:        labels,
	}
}

// ForceRemove runs a single "docker rm --force" naming every ID.
func (r *CLIRuntime) ForceRemove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]string{"rm", "--force"}, ids...)
	return r.run(ctx, "docker rm", r.withGlobal(args))
}

// Close is a no-op; the CLI backend holds no resources.
func (r *CLIRuntime) Close() error {
	return nil
}

// composeArgs builds "[--host h] compose [-p name] [-f file]...".
func (r *CLIRuntime) composeArgs() []string {
	args := []string{"compose"}
	if r.project.Name != "" {
		args = append(args, "--project-name", r.project.Name)
	}
	for _, f := range r.project.Files {
		args = append(args, "--file", f)
	}
	return r.withGlobal(args)
}

func (r *CLIRuntime) psArgs(all bool) []string {
	args := []string{"ps", "--no-trunc"}
	if all {
		args = append(args, "--all")
	}
	if project := scopedProject(r.scope, r.project.Name); project != "" {
		args = append(args, "--filter", "label="+projectLabelSelector(project))
	}
	return r.withGlobal(args)
}

// withGlobal prepends the daemon host flag when one is configured.
func (r *CLIRuntime) withGlobal(args []string) []string {
	if r.host == "" {
		return args
	}
	return append([]string{"--host", r.host}, args...)
}

// argv returns the program and arguments, applying the privilege prefix.
func (r *CLIRuntime) argv(args []string) (string, []string) {
	if len(r.privilege) == 0 {
		return r.binary, args
	}
	full := make([]string, 0, len(r.privilege)+len(args))
	full = append(full, r.privilege[1:]...)
	full = append(full, r.binary)
	full = append(full, args...)
	return r.privilege[0], full
}

func (r *CLIRuntime) run(ctx context.Context, step string, args []string) error {
	name, full := r.argv(args)
	_, err := r.runner.Run(ctx, r.project.Dir, name, full...)
	if err != nil {
		return classifyCommandError(ctx, step, err, len(r.privilege) > 0)
	}
	return nil
}

func (r *CLIRuntime) output(ctx context.Context, step string, args []string) ([]byte, error) {
	name, full := r.argv(args)
	out, err := r.runner.RunOutput(ctx, r.project.Dir, name, full...)
	if err != nil {
		return nil, classifyCommandError(ctx, step, err, len(r.privilege) > 0)
	}
	return out, nil
}
