package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
	"github.com/anatolykoptev/go_ytcomments/internal/output"
	"github.com/spf13/cobra"
)

var errMissingTarget = errors.New("you need to specify a Youtube ID/URL and an output filename")

type downloadFlags struct {
	videoID    string
	url        string
	output     string
	pretty     bool
	limit      int
	language   string
	sort       int
	sleep      time.Duration
	retries    int
	retrySleep time.Duration
	timeout    time.Duration
	verbose    bool
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	d := engine.DefaultConfig()
	fl := cmd.Flags()
	fl.StringVarP(&f.videoID, "youtubeid", "y", "", "ID of Youtube video for which to download the comments")
	fl.StringVarP(&f.url, "url", "u", "", "Youtube URL for which to download the comments")
	fl.StringVarP(&f.output, "output", "o", "", "Output filename (line delimited JSON; .db/.sqlite writes SQLite)")
	fl.BoolVarP(&f.pretty, "pretty", "p", false, "Change the output format to indented JSON")
	fl.IntVarP(&f.limit, "limit", "l", 0, "Limit the number of comments")
	fl.StringVarP(&f.language, "language", "a", "", "Language for Youtube generated text (e.g. en)")
	fl.IntVarP(&f.sort, "sort", "s", engine.SortRecent,
		fmt.Sprintf("Whether to download popular (%d) or recent (%d) comments", engine.SortPopular, engine.SortRecent))
	fl.DurationVar(&f.sleep, "sleep", d.BatchSleep, "Pause between response batches (env YT_BATCH_SLEEP)")
	fl.IntVar(&f.retries, "retries", d.Retry.Attempts, "Attempts per continuation request (env YT_RETRIES)")
	fl.DurationVar(&f.retrySleep, "retry-sleep", d.Retry.Sleep, "Fixed wait between failed attempts (env YT_RETRY_SLEEP)")
	fl.DurationVar(&f.timeout, "timeout", d.Retry.Timeout, "Per-request timeout (env YT_REQUEST_TIMEOUT)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging on stderr")
}

// apply lets explicitly set flags override the environment.
func (f *downloadFlags) apply(cmd *cobra.Command, c *engine.Config) {
	fl := cmd.Flags()
	if fl.Changed("sleep") {
		c.BatchSleep = f.sleep
	}
	if fl.Changed("retries") {
		c.Retry.Attempts = f.retries
	}
	if fl.Changed("retry-sleep") {
		c.Retry.Sleep = f.retrySleep
	}
	if fl.Changed("timeout") {
		c.Retry.Timeout = f.timeout
	}
}

func runDownload(ctx context.Context, stdout io.Writer, f downloadFlags) error {
	if (f.videoID == "" && f.url == "") || f.output == "" {
		return errMissingTarget
	}

	target := f.videoID
	if target == "" {
		target = f.url
	}
	fmt.Fprintln(stdout, "Downloading Youtube comments for", target)

	opts := sources.DefaultCommentOptions()
	opts.SortBy = f.sort
	opts.Language = f.language

	var (
		seq iter.Seq2[engine.CommentRecord, error]
		err error
	)
	if f.videoID != "" {
		seq, err = sources.FetchYouTubeComments(ctx, f.videoID, opts)
	} else {
		seq, err = sources.FetchYouTubeCommentsFromURL(ctx, f.url, opts)
	}
	if err != nil {
		return err
	}

	w, err := output.Open(f.output, f.pretty)
	if err != nil {
		return err
	}
	start := time.Now()
	crawlErr := writeComments(stdout, w, seq, f.limit)
	if err := w.Close(); err != nil && crawlErr == nil {
		crawlErr = err
	}
	if crawlErr != nil {
		fmt.Fprintln(stdout)
		return crawlErr
	}
	fmt.Fprintf(stdout, "\n[%.2f seconds] Done!\n", time.Since(start).Seconds())
	return nil
}

// writeComments drains seq into w, stopping after limit comments when limit > 0.
func writeComments(stdout io.Writer, w output.Writer, seq iter.Seq2[engine.CommentRecord, error], limit int) error {
	for rec, err := range seq {
		if err != nil {
			return err
		}
		if err := w.Write(rec); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Downloaded %d comment(s)\r", w.Count())
		if limit > 0 && w.Count() >= limit {
			return nil
		}
	}
	return nil
}
