package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/invoke"
	"github.com/wippyai/hostbridge/member"
	"github.com/wippyai/hostbridge/resolve"
	"github.com/wippyai/hostbridge/typeinfo"
	"github.com/wippyai/hostbridge/wasmhost"
)

func newCallCommand(a *app) *cobra.Command {
	var witPath string
	cmd := &cobra.Command{
		Use:   "call <module.wasm> <export> [args...]",
		Short: "Invoke an exported function on a fresh instance",
		Example: `  hostbridge call add.wasm add 2 40
  hostbridge call add.wasm add 4294967295 1 --wit add.wit`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, m, err := a.openModule(ctx, args[0], witPath)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			res, err := callExport(ctx, a.invoker(), m.Type(), args[1], args[2:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatResult(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&witPath, "wit", "", "WIT file refining export signatures")
	return cmd
}

// callExport instantiates t and calls its instance method name with args
// converted to the parameter types.
func callExport(ctx context.Context, inv *invoke.Invoker, t *typeinfo.Type, name string, args []string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	q := member.Methods().Named(name).DisallowFlags(typeinfo.Static)
	m, err := resolve.FindMethod(t, q, 0)
	if err != nil {
		return nil, err
	}
	vals, err := convertArgs(m.Params(), args)
	if err != nil {
		return nil, err
	}

	v, err := inv.Instantiate(t, ctx)
	if err != nil {
		return nil, err
	}
	if inst, ok := v.(*wasmhost.Instance); ok {
		defer inst.Close(ctx)
	}
	return inv.Call(m, v, vals...)
}

func convertArgs(params []*typeinfo.Type, args []string) ([]any, error) {
	if len(args) != len(params) {
		return nil, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("got %d arguments, want %d (%v)", len(args), len(params), typeinfo.Names(params)))
	}
	vals := make([]any, len(args))
	for i, s := range args {
		v, err := convertArg(s, params[i])
		if err != nil {
			return nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvalidInput, err, fmt.Sprintf("argument %d", i))
		}
		vals[i] = v
	}
	return vals, nil
}
