package main

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytcomments/internal/commentserver"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the youtube_comments MCP tool server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			initSlog(verbose)
			return serve()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	return cmd
}

func serve() error {
	c := configFromEnv()
	engine.Init(c)
	engine.InitCache(env.Duration("CACHE_TTL", 15*time.Minute), c.CacheMaxEntries, c.CacheCleanupInterval)

	port := env.Str("MCP_PORT", "8892")
	slog.Info("starting ytcomments server", slog.String("port", port))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ytcomments",
		Version: version,
	}, nil)

	commentserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", commentserver.ToolCount))

	return mcpserver.Run(server, mcpserver.Config{
		Name:         "ytcomments",
		Version:      version,
		Port:         port,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}
