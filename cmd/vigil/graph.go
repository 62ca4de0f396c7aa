package main

import (
	"github.com/aretw0/vigil/internal/cli"
	"github.com/spf13/cobra"
)

var graphOpts cli.GraphOptions

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <automaton>",
	Short: "Export the automaton as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the automaton. With --log, the log
is checked first and the nodes it went through are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := params(cmd)
		if err != nil {
			return err
		}
		opts := graphOpts
		opts.Path = args[0]
		opts.Params = p
		return cli.Graph(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVarP(&graphOpts.Log, "log", "l", "", "Log file whose path is highlighted")
	addSourceFlags(graphCmd, &graphOpts.Source)
}
