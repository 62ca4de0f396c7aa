package main

import (
	"github.com/aretw0/vigil/internal/cli"
	"github.com/aretw0/vigil/pkg/runner"
	"github.com/spf13/cobra"
)

var runOpts cli.RunOptions

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [automaton...] [flags]",
	Short: "Check logs against automata",
	Long: `Checks every log given with --log against every automaton given as argument,
plus the jobs of an optional --config file. Exits with status 1 unless every
check passes.`,
	Example: `  vigil run boot.yaml --log boot.log -p deadline=5s --timestamp-pattern '^(?<ts>\d+) '
  vigil run --config jobs.yaml --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := params(cmd)
		if err != nil {
			return err
		}
		opts := runOpts
		opts.Automata = args
		opts.Params = p
		if opts.EncryptionKey, err = encryptionKey(); err != nil {
			return err
		}
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Out = cmd.OutOrStdout()
		opts.Err = cmd.ErrOrStderr()

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()

		passed, err := cli.Run(sm.Context(), opts)
		if err != nil {
			return err
		}
		if !passed {
			return errFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringArrayVarP(&runOpts.Logs, "log", "l", nil, "Log file to check (repeatable)")
	f.StringVarP(&runOpts.Config, "config", "c", "", "Job file listing automata and logs")
	f.IntVarP(&runOpts.Workers, "workers", "w", 0, "Parallel checks (default: number of CPUs)")
	f.StringVar(&runOpts.Tools, "tools", "", "tools.yaml of commands scripts may call")
	f.BoolVar(&runOpts.JSON, "json", false, "Report verdicts as JSON lines")
	f.StringVar(&runOpts.RedisURL, "redis", "", "Save verdicts to Redis (redis://host:port/db)")
	f.StringArrayVar(&runOpts.Redact, "redact", nil, "Regex masked in saved verdicts (repeatable)")
	addSourceFlags(runCmd, &runOpts.Source)
}
