package main

import (
	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <automaton>...",
	Short: "Check automata for consistency",
	Long: `Builds each automaton, reporting every load-time problem, then crawls it from
the INITIAL node and warns about unreachable nodes and dead ends.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := params(cmd)
		if err != nil {
			return err
		}
		valid := true
		for _, path := range args {
			ok, err := cli.Validate(cmd.Context(), path, p, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			valid = valid && ok
		}
		if !valid {
			return errFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
