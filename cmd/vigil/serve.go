package main

import (
	"github.com/aretw0/vigil/internal/cli"
	"github.com/aretw0/vigil/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP check server",
	Long: `Serves the check API (POST /v1/check, /v1/verdicts) with Prometheus metrics on
/metrics. Verdicts are kept in memory unless --redis is given. Set
VIGIL_ENCRYPTION_KEY (base64, 32 bytes) to encrypt their reasons at rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		redisURL, _ := cmd.Flags().GetString("redis")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		debug, _ := cmd.Flags().GetBool("debug")
		redact, _ := cmd.Flags().GetStringArray("redact")
		key, err := encryptionKey()
		if err != nil {
			return err
		}

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()

		return cli.Serve(sm.Context(), cli.ServeOptions{
			Addr:          ":" + port,
			RedisURL:      redisURL,
			Debug:         debug,
			JSONLogs:      jsonLogs,
			Redact:        redact,
			EncryptionKey: key,
			Out:           cmd.OutOrStdout(),
			Err:           cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "P", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Store verdicts in Redis (redis://host:port/db)")
	serveCmd.Flags().Bool("json-logs", false, "Write logs as JSON")
	serveCmd.Flags().StringArray("redact", nil, "Regex masked in stored verdicts (repeatable)")
}
