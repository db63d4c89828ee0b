package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
	"github.com/anatolykoptev/go_ytcomments/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(n int, tail error) func(func(engine.CommentRecord, error) bool) {
	return func(yield func(engine.CommentRecord, error) bool) {
		for i := range n {
			if !yield(engine.CommentRecord{CID: "c" + strconv.Itoa(i), Votes: "0"}, nil) {
				return
			}
		}
		if tail != nil {
			yield(engine.CommentRecord{}, tail)
		}
	}
}

func TestRunDownloadRequiresTarget(t *testing.T) {
	tests := []struct {
		name string
		f    downloadFlags
	}{
		{"nothing", downloadFlags{}},
		{"no output", downloadFlags{videoID: "abc"}},
		{"no video", downloadFlags{output: "out.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := runDownload(context.Background(), &stdout, tt.f)
			require.ErrorIs(t, err, errMissingTarget)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestWriteCommentsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w, err := output.Open(path, false)
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, writeComments(&stdout, w, records(10, nil), 3))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
	assert.Contains(t, stdout.String(), "Downloaded 3 comment(s)\r")
}

func TestWriteCommentsError(t *testing.T) {
	boom := errors.New("boom")
	w, err := output.Open(filepath.Join(t.TempDir(), "out.json"), true)
	require.NoError(t, err)
	defer w.Close()

	var stdout bytes.Buffer
	err = writeComments(&stdout, w, records(2, boom), 0)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, w.Count())
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("YT_RETRIES", "9")
	t.Setenv("YT_BATCH_SLEEP", "2s")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--retries", "2", "--retry-sleep", "1s"}))

	c := configFromEnv()
	assert.Equal(t, 9, c.Retry.Attempts)
	assert.Equal(t, 2*time.Second, c.BatchSleep)

	var f downloadFlags
	f.retries, f.retrySleep = 2, time.Second
	f.apply(cmd, &c)
	assert.Equal(t, 2, c.Retry.Attempts)
	assert.Equal(t, time.Second, c.Retry.Sleep)
	assert.Equal(t, 2*time.Second, c.BatchSleep, "unset flag keeps env value")
}

func TestExitMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing target", errMissingTarget, "Error: " + errMissingTarget.Error()},
		{"download error", fmt.Errorf("%w: 7", sources.ErrSortUnavailable), "Error: failed to set sorting method: 7"},
		{"upstream", sources.ErrUpstreamAPI, "Error: error returned from YouTube API"},
		{"other", errors.New("disk full"), "Unexpected error: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitMessage(tt.err))
		})
	}
}
