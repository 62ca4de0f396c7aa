package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/vigil/internal/cli"
	"github.com/aretw0/vigil/pkg/logsource"
	"github.com/aretw0/vigil/pkg/persistence/middleware"
	"github.com/spf13/cobra"
)

// errFailed signals that checks ran but did not all pass. It only sets the exit code.
var errFailed = errors.New("checks failed")

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil checks logs against automaton contracts",
	Long: `Vigil feeds log files, line by line, into automata that describe the expected
behaviour of a program, and reports whether each log honours its contract.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Log engine activity to stderr")
	rootCmd.PersistentFlags().StringArrayP("param", "p", nil, "Automaton parameter as key=value (repeatable)")
}

// params reads the repeated --param flag.
func params(cmd *cobra.Command) (map[string]string, error) {
	pairs, _ := cmd.Flags().GetStringArray("param")
	return cli.ParseParams(pairs)
}

// addSourceFlags registers the flags describing how log lines are read.
func addSourceFlags(cmd *cobra.Command, cfg *logsource.Config) {
	f := cmd.Flags()
	f.StringVar(&cfg.Encoding, "encoding", "", "Log encoding (utf-8, utf-16le, latin1, any IANA name)")
	f.StringVar(&cfg.TimestampPattern, "timestamp-pattern", "", "Regex with a group named 'ts' locating the timestamp")
	f.StringVar(&cfg.TimestampFormat, "timestamp-format", "", "millis (default), seconds or a Go time layout")
	f.StringVar(&cfg.ChannelPattern, "channel-pattern", "", "Regex with a group named 'channel'")
	f.BoolVar(&cfg.Multiline, "multiline", false, "Join lines without a timestamp to the previous entry")
	f.BoolVar(&cfg.Normalize, "normalize", false, "Normalize payloads to Unicode NFC")
}

// encryptionKey reads the base64 key sealing stored verdicts, if any.
func encryptionKey() ([]byte, error) {
	raw := os.Getenv("VIGIL_ENCRYPTION_KEY")
	if raw == "" {
		return nil, nil
	}
	return middleware.ParseKey(raw)
}
