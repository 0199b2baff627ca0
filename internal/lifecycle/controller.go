package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/composectl/internal/compose"
	"github.com/mmr-tortoise/composectl/internal/docker"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// Operation names used in logs and metrics.
const (
	OperationStop    = "stop"
	OperationRestart = "restart"
	OperationStatus  = "status"
)

// Outcome labels for failed operations in metrics.
const outcomeError = "error"

// Recorder receives operation measurements. metrics.Collector implements it.
type Recorder interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	AddRemoved(n int)
}

// Options configures a Controller.
type Options struct {
	// Runtime is the container runtime client. Required.
	Runtime docker.Runtime

	// Project is the declared service group. Required.
	Project *compose.Project

	// Out receives one status line per step. Nil discards them.
	Out io.Writer

	// Locker serializes invocations. Nil uses an in-process lock only.
	Locker Locker

	// Recorder receives metrics. Nil disables them.
	Recorder Recorder

	// Logger is the base log entry. Nil uses the logrus standard logger.
	Logger *logrus.Entry
}

// Controller tears down and (re)provisions the declared service group.
type Controller struct {
	runtime  docker.Runtime
	project  *compose.Project
	out      io.Writer
	locker   Locker
	recorder Recorder
	log      *logrus.Entry
}

// New creates a Controller from opts.
func New(opts Options) (*Controller, error) {
	if opts.Runtime == nil {
		return nil, errors.New("lifecycle: runtime is required")
	}
	if opts.Project == nil {
		return nil, errors.New("lifecycle: project is required")
	}

	c := &Controller{
		runtime:  opts.Runtime,
		project:  opts.Project,
		out:      opts.Out,
		locker:   opts.Locker,
		recorder: opts.Recorder,
		log:      opts.Logger,
	}
	if c.out == nil {
		c.out = io.Discard
	}
	if c.locker == nil {
		c.locker = NewProcessLocker()
	}
	if c.recorder == nil {
		c.recorder = noopRecorder{}
	}
	if c.log == nil {
		c.log = logrus.NewEntry(logrus.StandardLogger())
	}
	c.log = c.log.WithField("project", opts.Project.Name)

	return c, nil
}

// StopAll gracefully tears down the declared services, then forcefully
// removes every container the runtime still reports.
//
// When the query returns no containers the all-down path is taken and no
// removal is issued. Otherwise exactly one forceful removal naming every
// reported ID is issued.
func (c *Controller) StopAll(ctx context.Context) (result model.StopResult, err error) {
	start := time.Now()
	defer func() {
		outcome := result.Outcome.String()
		if err != nil {
			outcome = outcomeError
		}
		c.recorder.ObserveOperation(OperationStop, outcome, time.Since(start))
	}()

	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return model.StopResult{}, err
	}
	defer c.release(unlock)

	if err := c.down(ctx); err != nil {
		return model.StopResult{}, err
	}

	c.status("Checking for remaining containers...")
	ids, err := c.runtime.ContainerIDs(ctx, true)
	if err != nil {
		c.log.WithError(err).Error("Container query failed")
		return model.StopResult{}, err
	}
	c.log.WithField("count", len(ids)).Debug("Containers reported after teardown")

	if len(ids) == 0 {
		result = model.StopResult{Outcome: model.OutcomeAllDown}
		c.status(result.Outcome.Message())
		return result, nil
	}

	c.status(fmt.Sprintf("Force removing %d container(s)...", len(ids)))
	if err := c.runtime.ForceRemove(ctx, ids); err != nil {
		err = reclassify(err, model.KindPartialTeardown)
		c.log.WithError(err).WithField("containers", ids).Error("Forceful removal failed")
		return model.StopResult{}, err
	}
	c.recorder.AddRemoved(len(ids))

	result = model.StopResult{Outcome: model.OutcomeForceRemoved, Removed: ids}
	c.status(result.Outcome.Message())
	c.log.WithField("count", len(ids)).Info("Containers forcefully removed")
	return result, nil
}

// RestartAll tears the declared services down, rebuilds and starts them
// detached, then lists the running containers. The forceful removal
// branch of StopAll is not part of this flow.
func (c *Controller) RestartAll(ctx context.Context) (result model.RestartResult, err error) {
	start := time.Now()
	defer func() {
		outcome := "restarted"
		if err != nil {
			outcome = outcomeError
		}
		c.recorder.ObserveOperation(OperationRestart, outcome, time.Since(start))
	}()

	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return model.RestartResult{}, err
	}
	defer c.release(unlock)

	if err := c.down(ctx); err != nil {
		return model.RestartResult{}, err
	}

	c.status("Building and starting declared services...")
	if err := c.runtime.ComposeUp(ctx, docker.UpOptions{Build: true, Detach: true}); err != nil {
		err = reclassify(err, model.KindBuildFailure)
		c.log.WithError(err).Error("Build and start failed")
		return model.RestartResult{}, err
	}

	c.status("Listing running containers...")
	running, err := c.runtime.Containers(ctx, false)
	if err != nil {
		c.log.WithError(err).Error("Status listing failed")
		return model.RestartResult{}, err
	}

	result = model.RestartResult{Services: c.project.Services, Running: running}
	c.log.WithField("running", len(running)).Info("Services restarted")
	return result, nil
}

// Status lists the containers in scope. Running containers only unless
// all is set. Status does not take the lock; it issues no mutations.
func (c *Controller) Status(ctx context.Context, all bool) ([]model.ContainerInfo, error) {
	start := time.Now()
	containers, err := c.runtime.Containers(ctx, all)
	outcome := "listed"
	if err != nil {
		outcome = outcomeError
	}
	c.recorder.ObserveOperation(OperationStatus, outcome, time.Since(start))
	return containers, err
}

// down runs the graceful teardown step shared by both flows.
func (c *Controller) down(ctx context.Context) error {
	c.status("Stopping declared services...")
	c.log.WithField("services", c.project.Services).Debug("Requesting compose down")
	if err := c.runtime.ComposeDown(ctx); err != nil {
		c.log.WithError(err).Error("Graceful teardown failed")
		return err
	}
	return nil
}

func (c *Controller) status(line string) {
	fmt.Fprintln(c.out, line)
}

func (c *Controller) release(unlock func() error) {
	if err := unlock(); err != nil {
		c.log.WithError(err).Warn("Failed to release lifecycle lock")
	}
}

// reclassify tags a runtime error with the kind of the step that failed.
// RuntimeUnavailable and PermissionDenied are kept as they are.
func reclassify(err error, kind model.ErrorKind) error {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.WithKind(kind)
	}
	return model.WrapCLIError(kind, kind.String(), err)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, string, time.Duration) {}
func (noopRecorder) AddRemoved(int)                                 {}
