package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/hostbridge/typeinfo"
)

func newInspectCommand(a *app) *cobra.Command {
	var witPath string
	cmd := &cobra.Command{
		Use:   "inspect <module.wasm>",
		Short: "List the members of a module's host type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, m, err := a.openModule(ctx, args[0], witPath)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			printType(cmd.OutOrStdout(), m.Type())
			return nil
		},
	}
	cmd.Flags().StringVar(&witPath, "wit", "", "WIT file refining export signatures")
	return cmd
}

func printType(w io.Writer, t *typeinfo.Type) {
	fmt.Fprintf(w, "type %s [%s]\n", t.Name(), t.Flags())
	for _, kind := range []typeinfo.MemberKind{typeinfo.ConstructorKind, typeinfo.MethodKind, typeinfo.FieldKind} {
		members := t.Members(kind)
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%ss:\n", kind)
		for _, m := range members {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
}
