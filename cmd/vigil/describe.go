package main

import (
	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <automaton>",
	Short: "Print a readable summary of an automaton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return cli.Describe(cmd.Context(), args[0], raw, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown instead of rendering it")
}
