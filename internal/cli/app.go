package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/composectl/internal/compose"
	"github.com/mmr-tortoise/composectl/internal/config"
	"github.com/mmr-tortoise/composectl/internal/docker"
	"github.com/mmr-tortoise/composectl/internal/lifecycle"
	"github.com/mmr-tortoise/composectl/internal/logging"
	"github.com/mmr-tortoise/composectl/internal/metrics"
	"github.com/mmr-tortoise/composectl/internal/model"
	"github.com/mmr-tortoise/composectl/internal/notify"
)

// newRuntime builds the runtime client. Tests replace it with a fake.
var newRuntime = docker.New

// app holds everything one command invocation needs.
type app struct {
	cfg        *config.Config
	project    *compose.Project
	runtime    docker.Runtime
	controller *lifecycle.Controller
	metrics    *metrics.Collector
	notifier   *notify.Notifier
	log        *logrus.Entry

	// out receives results; status receives step status lines.
	out    io.Writer
	status io.Writer
}

// newApp loads configuration, sets up logging and wires the controller
// for cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	if err := logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		NoColor: cfg.NoColor,
		Verbose: verbose,
		Output:  cmd.ErrOrStderr(),
	}); err != nil {
		return nil, model.WrapCLIError(model.KindConfig, "invalid logging configuration", err)
	}

	log := logrus.WithField("command", cmd.Name())
	if cfg.ConfigFile != "" {
		log.WithField("file", cfg.ConfigFile).Debug("Loaded config file")
	}

	project, err := compose.Load(compose.LoadOptions{
		Dir:   cfg.ProjectDir,
		Files: cfg.ComposeFiles,
		Name:  cfg.ProjectName,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.KindConfig, "failed to load compose project", err)
	}
	log.WithFields(logrus.Fields{
		"project":  project.Name,
		"files":    project.Files,
		"services": project.Services,
	}).Debug("Resolved compose project")

	a := &app{
		cfg:     cfg,
		project: project,
		log:     log.WithField("project", project.Name),
		out:     cmd.OutOrStdout(),
		status:  cmd.OutOrStdout(),
	}

	// Runtime output and status lines stay off stdout in JSON mode.
	streamOut := cmd.OutOrStdout()
	if IsJSONOutput() {
		a.status = cmd.ErrOrStderr()
		streamOut = cmd.ErrOrStderr()
	}

	a.metrics, err = metrics.New()
	if err != nil {
		return nil, err
	}

	a.notifier, err = notify.New(cfg.NotifyURLs, cfg.NotifyTitle)
	if err != nil {
		return nil, model.WrapCLIError(model.KindConfig, "invalid notification configuration", err)
	}

	a.runtime, err = newRuntime(docker.Options{
		Backend:          cfg.Backend,
		Binary:           cfg.Binary,
		PrivilegeCommand: cfg.PrivilegeCommand,
		Host:             cfg.Host,
		Project:          project,
		Scope:            cfg.Scope,
		Runner:           docker.ExecRunner{Stdout: streamOut, Stderr: cmd.ErrOrStderr()},
	})
	if err != nil {
		return nil, err
	}

	a.controller, err = lifecycle.New(lifecycle.Options{
		Runtime: a.runtime,
		Project: project,
		Out:     a.status,
		Locker: &lifecycle.FileLocker{
			Path:    lifecycle.LockPath(cfg.LockDir, project.Name),
			Timeout: cfg.LockTimeout,
		},
		Recorder: a.metrics,
		Logger:   a.log,
	})
	if err != nil {
		_ = a.runtime.Close()
		return nil, err
	}

	return a, nil
}

// finish records the outcome of operation: metrics textfile and
// notification. Neither can change the command result.
func (a *app) finish(operation, summary string, err error) {
	if err != nil {
		a.notifier.Failure(a.project.Name, operation, err)
	} else {
		a.notifier.Success(a.project.Name, operation, summary)
	}

	if werr := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); werr != nil {
		a.log.WithError(werr).Warn("Failed to write metrics")
	}
}

func (a *app) close() {
	if err := a.runtime.Close(); err != nil {
		a.log.WithError(err).Debug("Failed to close runtime client")
	}
}
