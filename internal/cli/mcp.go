package cli

import (
	"context"
	"io"
	"os"

	"github.com/aretw0/vigil/pkg/adapters/mcp"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	RedisURL string
	Debug    bool

	Redact        []string
	EncryptionKey []byte

	In  io.Reader
	Out io.Writer
	// Err receives debug logs; Out carries the protocol.
	Err io.Writer
}

// ServeMCP answers MCP requests on In/Out until ctx is cancelled or In is closed.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	logger := createLogger(opts.Err, opts.Debug, true)

	store, closeStore, err := openStore(opts.RedisURL, opts.Redact, opts.EncryptionKey)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Debug("mcp server started", "store", storeKind(opts.RedisURL))
	return mcp.NewServer(store, logger).Serve(ctx, opts.In, opts.Out)
}

func storeKind(redisURL string) string {
	if redisURL != "" {
		return "redis"
	}
	return "memory"
}
