// ytcomments downloads YouTube comments without the official API.
//
// The root command writes one video's comments to a file (JSON lines, pretty
// JSON or SQLite). "ytcomments serve" exposes the same downloader as the
// youtube_comments MCP tool over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(exitMessage(err))
		os.Exit(1)
	}
}

// exitMessage labels download failures and usage errors as errors, and
// anything else as unexpected.
func exitMessage(err error) string {
	if sources.IsDownloadError(err) || errors.Is(err, errMissingTarget) {
		return "Error: " + err.Error()
	}
	return "Unexpected error: " + err.Error()
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
}

// configFromEnv builds the engine configuration from the environment.
func configFromEnv() engine.Config {
	d := engine.DefaultConfig()
	return engine.Config{
		BaseURL:    env.Str("YT_BASE_URL", d.BaseURL),
		ConsentURL: env.Str("YT_CONSENT_URL", d.ConsentURL),
		Retry: engine.RetryConfig{
			Attempts: env.Int("YT_RETRIES", d.Retry.Attempts),
			Sleep:    env.Duration("YT_RETRY_SLEEP", d.Retry.Sleep),
			Timeout:  env.Duration("YT_REQUEST_TIMEOUT", d.Retry.Timeout),
		},
		BatchSleep:           env.Duration("YT_BATCH_SLEEP", d.BatchSleep),
		MaxToolComments:      env.Int("YT_MAX_TOOL_COMMENTS", d.MaxToolComments),
		MaxToolTextRunes:     env.Int("YT_MAX_TOOL_TEXT_RUNES", d.MaxToolTextRunes),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.CacheCleanupInterval),
	}
}

func newRootCmd() *cobra.Command {
	var f downloadFlags
	cmd := &cobra.Command{
		Use:           "ytcomments",
		Short:         "Download Youtube comments without using the Youtube API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initSlog(f.verbose)
			c := configFromEnv()
			f.apply(cmd, &c)
			engine.Init(c)
			return runDownload(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	f.register(cmd)
	cmd.AddCommand(newServeCmd())
	return cmd
}
