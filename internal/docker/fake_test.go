package docker

import (
	"context"
	"strings"
)

// recordedCall is one invocation seen by fakeRunner.
type recordedCall struct {
	dir  string
	name string
	args []string
	// quiet is true for RunOutput calls.
	quiet bool
}

// argv returns the call as a single space separated command line.
func (c recordedCall) argv() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// fakeRunner records calls and replies with canned output keyed by the
// first non-global docker argument ("compose", "ps", "rm").
type fakeRunner struct {
	calls   []recordedCall
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	return f.record(dir, name, args, false)
}

func (f *fakeRunner) RunOutput(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	return f.record(dir, name, args, true)
}

func (f *fakeRunner) record(dir, name string, args []string, quiet bool) ([]byte, error) {
	f.calls = append(f.calls, recordedCall{dir: dir, name: name, args: args, quiet: quiet})
	key := verb(args)
	return []byte(f.outputs[key]), f.errs[key]
}

// verb returns the docker subcommand, skipping privilege and --host args.
func verb(args []string) string {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--host":
			i++
		case "compose", "ps", "rm":
			return args[i]
		}
	}
	return ""
}
