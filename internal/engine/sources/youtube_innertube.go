package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// YouTube web front end: page markers, continuation tokens and the retrying
// Innertube POST used for every continuation.

const (
	ytWatchPath       = "/watch?v="
	ytResponseLimit   = 32 * 1024 * 1024
	ytHeartedState    = "TOOLBAR_HEART_STATE_HEARTED"
	ytRepliesTargetID = "comment-replies-item"
)

var (
	// ytCfgRE marks the first ytcfg.set({...}) call; the object after it is
	// taken with a brace matcher.
	ytCfgRE = regexp.MustCompile(`ytcfg\.set\s*\(\s*\{`)

	// ytInitialDataRE marks the initial page state assignment.
	ytInitialDataRE = regexp.MustCompile(`(?:window\s*\[\s*["']ytInitialData["']\s*\]|ytInitialData)\s*=\s*\{`)
)

// ytCommentsTargets are the action targets whose items page top-level comments.
var ytCommentsTargets = map[string]bool{
	"comments-section":                         true,
	"engagement-panel-comments-section":        true,
	"shorts-engagement-panel-comments-section": true,
}

// Continuation is one pending follow-up request: the relative API path to POST
// to and the opaque token sent in the body.
type Continuation struct {
	APIURL string
	Token  string
}

// continuationFromEndpoint reads a continuation endpoint or command node.
func continuationFromEndpoint(ep *engine.Node) (Continuation, bool) {
	c := Continuation{
		APIURL: ep.Path("commandMetadata", "webCommandMetadata", "apiUrl").Text(),
		Token:  ep.Path("continuationCommand", "token").Text(),
	}
	return c, c.APIURL != "" && c.Token != ""
}

// continuationURL resolves apiURL against the base URL and adds the API key
// to whatever query it already carries.
func (s *Session) continuationURL(apiURL string) (string, error) {
	u, err := url.Parse(s.cfg.BaseURL + apiURL)
	if err != nil {
		return "", fmt.Errorf("continuation url %q: %w", apiURL, err)
	}
	if key := s.apiKey(); key != "" {
		q := u.Query()
		q.Set("key", key)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// post redeems one continuation.
//
// 200 returns the decoded body. 403 and 413 return an empty object at once;
// the platform answers those when there is nothing more to give. Any other
// status, transport error or timeout is retried with a fixed sleep. When every
// attempt fails the error wraps ErrRequestExhausted.
func (s *Session) post(ctx context.Context, c Continuation) (*engine.Node, error) {
	engine.IncrContinuationRequests()

	body := engine.NewObject()
	body.Set("context", s.clientContext())
	body.Set("continuation", engine.NewString(c.Token))
	payload, err := body.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode continuation body: %w", err)
	}

	target, err := s.continuationURL(c.APIURL)
	if err != nil {
		return nil, err
	}

	doc, err := engine.RetryFixed(ctx, s.cfg.Retry, func(ctx context.Context) (*engine.Node, error) {
		res, err := s.client.R().
			SetContext(ctx).
			SetHeader("content-type", "application/json").
			SetBody(payload).
			SetDoNotParseResponse(true).
			Post(target)
		if err != nil {
			return nil, err
		}
		rb := res.RawBody()
		defer rb.Close()

		switch res.StatusCode() {
		case http.StatusOK:
			return engine.DecodeNode(io.LimitReader(rb, ytResponseLimit))
		case http.StatusForbidden, http.StatusRequestEntityTooLarge:
			return engine.NewObject(), nil
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(rb, 4096))
		return nil, engine.StatusError(res.StatusCode())
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, engine.ErrRetriesExhausted) {
			engine.IncrRequestsExhausted()
			slog.Debug("youtube: continuation exhausted", slog.String("api", c.APIURL), slog.Any("error", err))
			return nil, fmt.Errorf("%w: %s: %w", ErrRequestExhausted, c.APIURL, err)
		}
		return nil, err
	}
	return doc, nil
}
