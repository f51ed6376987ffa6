package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/x-research-team/unirt/rt/adapter/host"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "urinfo version %s\n", host.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
