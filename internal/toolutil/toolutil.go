// Package toolutil provides shared input helpers for the MCP tools.
package toolutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// NormLimit applies the default when limit is unset and caps it at ceiling.
// ceiling <= 0 means no cap.
func NormLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		limit = def
	}
	if ceiling > 0 && limit > ceiling {
		limit = ceiling
	}
	return limit
}

// NormSort returns the requested sort order, recent-first when unset.
func NormSort(sort *int) int {
	if sort == nil {
		return engine.SortRecent
	}
	return *sort
}

// NormLang trims a language code; empty keeps the page default.
func NormLang(lang string) string {
	return strings.TrimSpace(lang)
}

// PageTarget resolves the video id / url pair of a tool input. When only a
// URL is given the video id is read from its v= parameter if present.
func PageTarget(videoID, rawURL string) (id, pageURL string, err error) {
	videoID = strings.TrimSpace(videoID)
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case videoID != "":
		return videoID, "", nil
	case rawURL != "":
		u, err := url.Parse(rawURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", "", fmt.Errorf("invalid url %q", rawURL)
		}
		return u.Query().Get("v"), rawURL, nil
	}
	return "", "", fmt.Errorf("video_id or url is required")
}
