package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/invoke"
	"github.com/wippyai/hostbridge/logging"
	"github.com/wippyai/hostbridge/typeinfo"
	"github.com/wippyai/hostbridge/wasmhost"
)

// app carries the global flags and the configuration they produce.
type app struct {
	cfg        *config.Config
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "hostbridge",
		Short: "Resolve and invoke members of host types backed by WebAssembly modules",
		Long: `hostbridge exposes a WebAssembly module as a host type: exported functions
become methods, exported memories become fields and instantiation is the
constructor. Members are found with the same resolver used for Go types.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default hostbridge.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newVersionCommand(a),
		newInspectCommand(a),
		newCallCommand(a),
		newBrowseCommand(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := cfg.Apply(); err != nil {
		return err
	}
	a.cfg = cfg
	logging.Debugf("config: {}", cfg)
	return nil
}

func (a *app) invoker() *invoke.Invoker {
	return invoke.NewInvoker(invoke.WithAccessPolicy(a.cfg.AccessPolicy()))
}

// openModule starts a host and loads path into it under the file's base name.
// The caller closes the host.
func (a *app) openModule(ctx context.Context, path, witPath string) (*wasmhost.Host, *wasmhost.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read module")
	}
	var witText string
	if witPath != "" {
		b, err := os.ReadFile(witPath)
		if err != nil {
			return nil, nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read WIT")
		}
		witText = string(b)
	}

	h, err := wasmhost.New(ctx, a.cfg.Runtime(), typeinfo.NewRegistry())
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := h.Load(ctx, name, data, witText)
	if err != nil {
		_ = h.Close(ctx)
		return nil, nil, err
	}
	return h, m, nil
}
