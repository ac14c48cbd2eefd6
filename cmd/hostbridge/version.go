package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/hostbridge/errors"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version [reported]",
		Short: "Detect the version tag for a reported host version",
		Long: `Detect the version tag for a reported host version.

The reported version defaults to host.version from the config. Tags are
matched in the order of the versions section.`,
		Example: `  hostbridge version
  hostbridge version 1.18.1-R0.1-SNAPSHOT`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reported := a.cfg.Host.Version
			if len(args) > 0 {
				reported = args[0]
			}
			if reported == "" {
				return errors.InvalidInput(errors.PhaseVersion, "no reported version given and host.version is empty")
			}
			enum, err := a.cfg.Enumeration()
			if err != nil {
				return err
			}
			tag, err := enum.Detect(reported)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", tag.Name())
			fmt.Fprintf(out, "  ordinal:   %d of %d\n", tag.Ordinal(), len(enum.Tags()))
			fmt.Fprintf(out, "  namespace: %s\n", tag.Namespace())
			return nil
		},
	}
}
