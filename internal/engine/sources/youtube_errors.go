package sources

import "errors"

// ErrDownload is the parent of every comment download failure.
var ErrDownload = errors.New("comment download failed")

// Error kinds. Each wraps ErrDownload, so errors.Is(err, ErrDownload) holds for all.
var (
	// ErrConfigExtraction means the page did not carry the embedded client
	// configuration or initial state (layout changed, or a fully client-rendered page).
	ErrConfigExtraction = downloadError("unable to extract YouTube configuration")

	// ErrCommentsDisabled means the page has no comments section continuation.
	ErrCommentsDisabled = downloadError("comments may be disabled for this video")

	// ErrSortUnavailable means the requested sort index has no menu entry.
	ErrSortUnavailable = downloadError("failed to set sorting method")

	// ErrUpstreamAPI carries an error message reported inside a response body.
	ErrUpstreamAPI = downloadError("error returned from YouTube API")

	// ErrRequestExhausted means a continuation request never got a usable
	// response. The crawl treats it as the end of the stream.
	ErrRequestExhausted = downloadError("continuation request exhausted retries")
)

type kindError struct {
	msg string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return ErrDownload }

func downloadError(msg string) error { return &kindError{msg: msg} }

// IsDownloadError reports whether err came from a comment download step.
func IsDownloadError(err error) bool { return errors.Is(err, ErrDownload) }
