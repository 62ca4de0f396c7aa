package main

import (
	"github.com/aretw0/vigil/internal/cli"
	"github.com/aretw0/vigil/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve checks to MCP clients over stdio",
	Long: `Speaks the Model Context Protocol on stdin/stdout. Tools: check_log,
list_verdicts, get_verdict and graph_definition; resource vigil://verdicts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		redisURL, _ := cmd.Flags().GetString("redis")
		redact, _ := cmd.Flags().GetStringArray("redact")
		debug, _ := cmd.Flags().GetBool("debug")
		key, err := encryptionKey()
		if err != nil {
			return err
		}

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()

		return cli.ServeMCP(sm.Context(), cli.MCPOptions{
			RedisURL:      redisURL,
			Debug:         debug,
			Redact:        redact,
			EncryptionKey: key,
			In:            cmd.InOrStdin(),
			Out:           cmd.OutOrStdout(),
			Err:           cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("redis", "", "Store verdicts in Redis (redis://host:port/db)")
	mcpCmd.Flags().StringArray("redact", nil, "Regex masked in stored verdicts (repeatable)")
}
