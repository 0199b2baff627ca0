package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmr-tortoise/composectl/internal/docker"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// fakeRuntime is an in-memory docker.Runtime. containers is the simulated
// host state: ComposeDown removes the project's containers and leaves the
// rest behind, ForceRemove removes whatever it is told to.
type fakeRuntime struct {
	mu sync.Mutex

	// calls records each method invocation in order.
	calls []string

	// lingering are containers ComposeDown does not remove.
	lingering []model.ContainerInfo

	// started are containers ComposeUp creates.
	started []model.ContainerInfo

	containers []model.ContainerInfo

	downErr, upErr, queryErr, removeErr error
}

var _ docker.Runtime = (*fakeRuntime)(nil)

func (f *fakeRuntime) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRuntime) ComposeDown(context.Context) error {
	f.record("down")
	if f.downErr != nil {
		return f.downErr
	}
	f.mu.Lock()
	f.containers = append([]model.ContainerInfo(nil), f.lingering...)
	f.mu.Unlock()
	return nil
}

func (f *fakeRuntime) ComposeUp(_ context.Context, opts docker.UpOptions) error {
	f.record(fmt.Sprintf("up build=%t detach=%t", opts.Build, opts.Detach))
	if f.upErr != nil {
		return f.upErr
	}
	f.mu.Lock()
	f.containers = append(f.containers, f.started...)
	f.mu.Unlock()
	return nil
}

func (f *fakeRuntime) ContainerIDs(ctx context.Context, all bool) ([]string, error) {
	f.record(fmt.Sprintf("ids all=%t", all))
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.containers))
	for _, c := range f.containers {
		if all || c.State.IsRunning() {
			ids = append(ids, c.ContainerID)
		}
	}
	return ids, nil
}

func (f *fakeRuntime) Containers(_ context.Context, all bool) ([]model.ContainerInfo, error) {
	f.record(fmt.Sprintf("list all=%t", all))
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ContainerInfo
	for _, c := range f.containers {
		if all || c.State.IsRunning() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRuntime) ForceRemove(_ context.Context, ids []string) error {
	f.record("rm " + strings.Join(ids, " "))
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := f.containers[:0]
	for _, c := range f.containers {
		if !remove[c.ContainerID] {
			kept = append(kept, c)
		}
	}
	f.containers = kept
	return nil
}

func (f *fakeRuntime) Close() error { return nil }

func (f *fakeRuntime) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeRecorder captures metric observations.
type fakeRecorder struct {
	operations []string
	removed    int
}

func (r *fakeRecorder) ObserveOperation(operation, outcome string, _ time.Duration) {
	r.operations = append(r.operations, operation+"/"+outcome)
}

func (r *fakeRecorder) AddRemoved(n int) { r.removed += n }
