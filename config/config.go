// Package config loads hostbridge settings from a YAML file and
// HOSTBRIDGE_* environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/hostbridge/caller"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/invoke"
	"github.com/wippyai/hostbridge/logging"
	"github.com/wippyai/hostbridge/version"
	"github.com/wippyai/hostbridge/wasmhost"
)

// EnvPrefix prefixes every environment override (HOSTBRIDGE_HOST_VERSION).
const EnvPrefix = "HOSTBRIDGE"

// Config holds the complete configuration
type Config struct {
	Host     HostConfig      `mapstructure:"host"`
	Versions []version.Entry `mapstructure:"versions"`
	Log      logging.Config  `mapstructure:"log"`
	Caller   CallerConfig    `mapstructure:"caller"`
	Access   AccessConfig    `mapstructure:"access"`
	Wasm     WasmConfig      `mapstructure:"wasm"`
}

// HostConfig describes the running host
type HostConfig struct {
	Version string `mapstructure:"version"` // host-reported version string
}

// CallerConfig selects the caller lookup strategy
type CallerConfig struct {
	Strategy string `mapstructure:"strategy"` // auto, frame, stack
}

// AccessConfig controls access to private members
type AccessConfig struct {
	AllowUnexported bool `mapstructure:"allow_unexported"`
}

// WasmConfig holds WebAssembly runtime settings
type WasmConfig struct {
	MemoryLimitPages   uint32 `mapstructure:"memory_limit_pages"` // 0 keeps the runtime default
	CloseOnContextDone bool   `mapstructure:"close_on_context_done"`
	WASI               bool   `mapstructure:"wasi"` // instantiate wasi_snapshot_preview1
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Log: logging.Config{
			Level: "info",
		},
		Caller: CallerConfig{
			Strategy: "auto",
		},
		Access: AccessConfig{
			AllowUnexported: true,
		},
		Wasm: WasmConfig{
			CloseOnContextDone: true,
		},
	}
}

// Load reads configPath, or hostbridge.yaml from the working directory and
// $HOME/.config/hostbridge when configPath is empty. A missing default file
// is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hostbridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hostbridge")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid log level")
	}
	if _, err := caller.ParseStrategy(c.Caller.Strategy); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid caller strategy")
	}
	if len(c.Versions) > 0 {
		if _, err := version.NewEnumeration(c.Versions...); err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid versions")
		}
	}
	return nil
}

// Enumeration compiles the versions section.
func (c *Config) Enumeration() (*version.Enumeration, error) {
	if len(c.Versions) == 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, "no versions configured")
	}
	return version.NewEnumeration(c.Versions...)
}

// AccessPolicy returns the invoke policy for private members.
func (c *Config) AccessPolicy() invoke.AccessPolicy {
	if c.Access.AllowUnexported {
		return invoke.AllowPrivate
	}
	return invoke.DenyPrivate
}

// Runtime returns the wasm host settings.
func (c *Config) Runtime() wasmhost.Config {
	return wasmhost.Config{
		MemoryLimitPages:   c.Wasm.MemoryLimitPages,
		CloseOnContextDone: c.Wasm.CloseOnContextDone,
		WASI:               c.Wasm.WASI,
	}
}

// Apply installs the logger and requests the caller strategy. It should run
// once at startup, before any caller lookup.
func (c *Config) Apply() error {
	l, err := logging.New(c.Log)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "failed to build logger")
	}
	logging.SetLogger(l)

	s, err := caller.ParseStrategy(c.Caller.Strategy)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid caller strategy")
	}
	caller.UseStrategy(s)
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("host=%q versions=%d log=%s caller=%s allow_unexported=%v",
		c.Host.Version, len(c.Versions), c.Log.Level, c.Caller.Strategy, c.Access.AllowUnexported)
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("host.version", defaults.Host.Version)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.development", defaults.Log.Development)
	v.SetDefault("caller.strategy", defaults.Caller.Strategy)
	v.SetDefault("access.allow_unexported", defaults.Access.AllowUnexported)
	v.SetDefault("wasm.memory_limit_pages", defaults.Wasm.MemoryLimitPages)
	v.SetDefault("wasm.close_on_context_done", defaults.Wasm.CloseOnContextDone)
	v.SetDefault("wasm.wasi", defaults.Wasm.WASI)
}
