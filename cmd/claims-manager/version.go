package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshift/hive-claims-manager/pkg/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints version information for the command",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
