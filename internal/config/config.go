// Package config loads composectl settings from flags, COMPOSECTL_*
// environment variables and an optional config file.
//
// Precedence, highest first: explicitly set flags, environment, config
// file, defaults. Config files may be YAML, JSON or JSONC; JSONC comments
// and trailing commas are stripped with github.com/tidwall/jsonc before
// viper parses the file as JSON.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/composectl/internal/docker"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// EnvPrefix is prepended to every environment variable composectl reads.
const EnvPrefix = "COMPOSECTL"

// DefaultSudoCommand is the privilege prefix used by --sudo.
const DefaultSudoCommand = "sudo"

// FileNames lists the config file names probed in the project directory.
var FileNames = []string{
	"composectl.jsonc",
	"composectl.json",
	"composectl.yaml",
	"composectl.yml",
}

// Config keys.
const (
	KeyConfig           = "config"
	KeyProjectDir       = "project.dir"
	KeyProjectFiles     = "project.files"
	KeyProjectName      = "project.name"
	KeyProjectScope     = "project.scope"
	KeyRuntimeBinary    = "runtime.binary"
	KeyRuntimeSudo      = "runtime.sudo"
	KeyRuntimePrivilege = "runtime.privilege_command"
	KeyRuntimeBackend   = "runtime.backend"
	KeyRuntimeHost      = "runtime.host"
	KeyLockDir          = "lock.dir"
	KeyLockTimeout      = "lock.timeout"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyLogNoColor       = "log.no_color"
	KeyMetricsTextfile  = "metrics.textfile"
	KeyNotifyURLs       = "notify.urls"
	KeyNotifyTitle      = "notify.title"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"config":            KeyConfig,
	"project-dir":       KeyProjectDir,
	"file":              KeyProjectFiles,
	"project-name":      KeyProjectName,
	"scope":             KeyProjectScope,
	"docker-binary":     KeyRuntimeBinary,
	"sudo":              KeyRuntimeSudo,
	"privilege-command": KeyRuntimePrivilege,
	"backend":           KeyRuntimeBackend,
	"host":              KeyRuntimeHost,
	"lock-dir":          KeyLockDir,
	"lock-timeout":      KeyLockTimeout,
	"log-level":         KeyLogLevel,
	"log-format":        KeyLogFormat,
	"no-color":          KeyLogNoColor,
	"metrics-textfile":  KeyMetricsTextfile,
	"notify-url":        KeyNotifyURLs,
	"notify-title":      KeyNotifyTitle,
}

// Config is the resolved composectl configuration.
type Config struct {
	// ConfigFile is the config file that was read, or "".
	ConfigFile string

	ProjectDir   string
	ComposeFiles []string
	ProjectName  string
	Scope        model.Scope

	Binary           string
	PrivilegeCommand string
	Backend          docker.Backend
	Host             string

	LockDir     string
	LockTimeout time.Duration

	LogLevel  string
	LogFormat string
	NoColor   bool

	MetricsTextfile string

	NotifyURLs  []string
	NotifyTitle string
}

// RegisterFlags adds every configuration flag to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Config file (default: composectl.{jsonc,json,yaml,yml} in the project directory)")

	flags.String("project-dir", "", "Compose project directory (default: current directory)")
	flags.StringSliceP("file", "f", nil, "Compose file(s), in merge order")
	flags.StringP("project-name", "p", "", "Compose project name")
	flags.String("scope", string(model.ScopeAll), "Containers seen by queries: all (every container on the host) or project")

	flags.String("docker-binary", "docker", "Container runtime CLI")
	flags.Bool("sudo", false, "Run runtime commands through sudo")
	flags.String("privilege-command", "", `Privilege prefix for runtime commands (e.g. "sudo -n")`)
	flags.String("backend", string(docker.BackendCLI), "Runtime backend: cli or api")
	flags.StringP("host", "H", "", "Docker daemon address (default: DOCKER_HOST or local socket)")

	flags.String("lock-dir", "", "Directory for the lifecycle lock file (default: system temp dir)")
	flags.Duration("lock-timeout", 0, "Maximum wait for the lifecycle lock (0 waits indefinitely)")

	flags.String("log-level", "info", "Log level: trace, debug, info, warn, error, fatal, panic")
	flags.String("log-format", "auto", "Log format: auto, json, logfmt, pretty")
	flags.Bool("no-color", false, "Disable colored log output")

	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file after each run")

	flags.StringSlice("notify-url", nil, "Shoutrrr notification URL(s)")
	flags.String("notify-title", "", "Notification title")
}

// Load resolves the configuration from flags, environment and config file.
// Errors are CLIErrors of kind KindConfig.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyProjectScope, string(model.ScopeAll))
	v.SetDefault(KeyRuntimeBinary, "docker")
	v.SetDefault(KeyRuntimeBackend, string(docker.BackendCLI))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, configError(fmt.Sprintf("failed to bind flag --%s", name), err)
				}
			}
		}
	}

	path, err := findConfigFile(v.GetString(KeyConfig), v.GetString(KeyProjectDir))
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		ConfigFile:       path,
		ProjectDir:       v.GetString(KeyProjectDir),
		ComposeFiles:     stringList(v, KeyProjectFiles),
		ProjectName:      v.GetString(KeyProjectName),
		Binary:           v.GetString(KeyRuntimeBinary),
		PrivilegeCommand: strings.TrimSpace(v.GetString(KeyRuntimePrivilege)),
		Host:             v.GetString(KeyRuntimeHost),
		LockDir:          v.GetString(KeyLockDir),
		LockTimeout:      v.GetDuration(KeyLockTimeout),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
		NoColor:          v.GetBool(KeyLogNoColor) || os.Getenv("NO_COLOR") != "",
		MetricsTextfile:  v.GetString(KeyMetricsTextfile),
		NotifyURLs:       stringList(v, KeyNotifyURLs),
		NotifyTitle:      v.GetString(KeyNotifyTitle),
	}

	if v.GetBool(KeyRuntimeSudo) && cfg.PrivilegeCommand == "" {
		cfg.PrivilegeCommand = DefaultSudoCommand
	}

	if cfg.Scope, err = model.ParseScope(v.GetString(KeyProjectScope)); err != nil {
		return nil, configError("invalid configuration", err)
	}
	if cfg.Backend, err = docker.ParseBackend(v.GetString(KeyRuntimeBackend)); err != nil {
		return nil, configError("invalid configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values Load cannot check while parsing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Binary) == "" {
		return model.NewCLIError(model.KindConfig, "runtime binary must not be empty")
	}
	if c.LockTimeout < 0 {
		return model.NewCLIError(model.KindConfig,
			fmt.Sprintf("lock timeout must not be negative, got %s", c.LockTimeout))
	}
	return nil
}

// findConfigFile returns explicit when set, otherwise the first FileNames
// entry present in dir (or the working directory). An explicit file that
// does not exist is an error; a missing default file is not.
func findConfigFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", configError(fmt.Sprintf("config file %s not readable", explicit), err)
		}
		return explicit, nil
	}

	if dir == "" {
		dir = "."
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// readConfigFile merges the file at path into v.
func readConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return configError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json":
		data = jsonc.ToJSON(data)
		v.SetConfigType("json")
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	default:
		return model.NewCLIError(model.KindConfig,
			fmt.Sprintf("unsupported config file type %q (use .jsonc, .json, .yaml or .yml)", filepath.Ext(path)))
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return configError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// stringList reads a list value. Environment variables hold a single
// comma separated string.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	if s, ok := v.Get(key).(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func configError(message string, err error) *model.CLIError {
	return model.WrapCLIError(model.KindConfig, message, err)
}
