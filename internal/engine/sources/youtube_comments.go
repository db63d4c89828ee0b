package sources

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// CommentOptions tunes one comment download.
type CommentOptions struct {
	SortBy   int           // engine.SortPopular or engine.SortRecent
	Language string        // client locale override, "" keeps the page default
	Sleep    time.Duration // pause between response batches
}

// DefaultCommentOptions returns recent-first sorting with the configured batch sleep.
func DefaultCommentOptions() CommentOptions {
	return CommentOptions{SortBy: engine.SortRecent, Sleep: engine.Cfg.BatchSleep}
}

// VideoURL builds the watch page URL for a video id.
func VideoURL(videoID string) string {
	return engine.Cfg.BaseURL + ytWatchPath + url.QueryEscape(videoID)
}

// FetchYouTubeComments downloads the comments of a video by id.
func FetchYouTubeComments(ctx context.Context, videoID string, opts CommentOptions) (iter.Seq2[engine.CommentRecord, error], error) {
	return FetchYouTubeCommentsFromURL(ctx, VideoURL(videoID), opts)
}

// FetchYouTubeCommentsFromURL downloads the comments shown on a watch page,
// short or community post.
//
// Bootstrap and sort resolution run before it returns, so page-structure
// problems come back as the error. The returned sequence performs the crawl
// lazily; stopping the range loop stops all further network activity.
//
// The session is released when the range loop ends, whether the sequence was
// drained or not. A caller that gets a nil error must range the sequence at
// least once; an empty loop body with break is enough.
func FetchYouTubeCommentsFromURL(ctx context.Context, pageURL string, opts CommentOptions) (iter.Seq2[engine.CommentRecord, error], error) {
	s, err := NewSession(*engine.Cfg)
	if err != nil {
		return nil, err
	}
	data, err := s.Bootstrap(ctx, pageURL, opts.Language)
	if err != nil {
		s.Close()
		return nil, err
	}
	seeds, err := s.ResolveEntryContinuations(ctx, data, opts.SortBy)
	if err != nil {
		s.Close()
		return nil, err
	}
	slog.Info("youtube: crawling comments", slog.String("url", pageURL), slog.Int("sort", opts.SortBy))

	crawl := s.Crawl(ctx, seeds, opts.Sleep)
	return func(yield func(engine.CommentRecord, error) bool) {
		defer s.Close()
		for rec, err := range crawl {
			if !yield(rec, err) {
				return
			}
		}
	}, nil
}

// ResolveEntryContinuations checks that the page has a comments section and
// returns the seed continuation for the requested sort order.
func (s *Session) ResolveEntryContinuations(ctx context.Context, data *engine.Node, sortBy int) ([]Continuation, error) {
	itemSection := engine.First(data, "itemSectionRenderer")
	if itemSection == nil || engine.First(itemSection, "continuationItemRenderer") == nil {
		return nil, ErrCommentsDisabled
	}

	menu := sortMenu(data)
	if len(menu) == 0 {
		// Community posts render the sort menu only after one section continuation.
		section := engine.First(data, "sectionListRenderer")
		if c, ok := continuationFromEndpoint(engine.First(section, "continuationEndpoint")); ok {
			resp, err := s.post(ctx, c)
			switch {
			case err == nil:
				menu = sortMenu(resp)
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				slog.Debug("youtube: section continuation failed", slog.Any("error", err))
			}
		}
	}

	if sortBy < 0 || sortBy >= len(menu) {
		return nil, fmt.Errorf("%w: %d", ErrSortUnavailable, sortBy)
	}
	c, ok := continuationFromEndpoint(menu[sortBy].Get("serviceEndpoint"))
	if !ok {
		return nil, fmt.Errorf("%w: %d: menu item has no continuation", ErrSortUnavailable, sortBy)
	}
	return []Continuation{c}, nil
}

func sortMenu(data *engine.Node) []*engine.Node {
	return engine.First(data, "sortFilterSubMenuRenderer").Get("subMenuItems").List()
}

// Crawl redeems continuations until none are left, yielding comments as each
// response batch is processed.
//
// "More comments" continuations go to the front of the work list and "more
// replies" buttons to the back, and the front is always taken next, so every
// page of top-level comments is fetched before queued reply pages. A request
// that never succeeds, or an empty response, ends the stream without error;
// an error message inside a response ends it with ErrUpstreamAPI.
func (s *Session) Crawl(ctx context.Context, seeds []Continuation, sleep time.Duration) iter.Seq2[engine.CommentRecord, error] {
	return func(yield func(engine.CommentRecord, error) bool) {
		work := engine.NewDeque(seeds...)
		for work.Len() > 0 {
			c, _ := work.PopFront()
			slog.Debug("youtube: continuation", slog.String("api", c.APIURL), slog.Int("queued", work.Len()))

			resp, err := s.post(ctx, c)
			if err != nil {
				if errors.Is(err, ErrRequestExhausted) {
					slog.Warn("youtube: continuation failed, ending crawl", slog.Any("error", err))
					return
				}
				engine.IncrCrawlErrors()
				yield(engine.CommentRecord{}, err)
				return
			}
			if resp.Empty() {
				return
			}
			if msg := engine.First(resp, "externalErrorMessage"); !msg.Empty() {
				engine.IncrCrawlErrors()
				yield(engine.CommentRecord{}, fmt.Errorf("%w: %s", ErrUpstreamAPI, msg.Text()))
				return
			}

			queueContinuations(resp, work)
			payments := paymentTable(resp)
			toolbar := toolbarStates(resp)
			now := s.now()

			comments := engine.SearchAll(resp, "commentEntityPayload")
			for i := len(comments) - 1; i >= 0; i-- {
				engine.IncrCommentsEmitted()
				if !yield(buildRecord(comments[i], toolbar, payments, now), nil) {
					return
				}
			}

			if work.Len() == 0 || sleep <= 0 {
				continue
			}
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				yield(engine.CommentRecord{}, ctx.Err())
				return
			}
		}
	}
}

// queueContinuations adds the continuations found in a response to work.
func queueContinuations(resp *engine.Node, work *engine.Deque[Continuation]) {
	actions := engine.SearchAll(resp, "reloadContinuationItemsCommand")
	actions = append(actions, engine.SearchAll(resp, "appendContinuationItemsAction")...)

	for _, action := range actions {
		target := action.Get("targetId").Text()
		for _, item := range action.Get("continuationItems").List() {
			if ytCommentsTargets[target] {
				var block []Continuation
				for ep := range engine.SearchKey(item, "continuationEndpoint") {
					if c, ok := continuationFromEndpoint(ep); ok {
						block = append(block, c)
					} else {
						slog.Warn("youtube: skipping malformed continuation", slog.String("target", target))
					}
				}
				work.PushFront(block...)
			}
			if strings.HasPrefix(target, ytRepliesTargetID) && item.Has("continuationItemRenderer") {
				button := engine.First(item, "buttonRenderer")
				if c, ok := continuationFromEndpoint(button.Get("command")); ok {
					work.PushBack(c)
				}
			}
		}
	}
}

// paymentTable maps comment ids to paid-chip text. Chips are keyed by surface
// key and joined to comment ids through the view models of the same response.
func paymentTable(resp *engine.Node) map[string]string {
	bySurface := make(map[string]string)
	for p := range engine.SearchKey(resp, "commentSurfaceEntityPayload") {
		if p.Has("pdgCommentChip") {
			bySurface[p.Get("key").Text()] = engine.First(p, "simpleText").Text()
		}
	}
	if len(bySurface) == 0 {
		return nil
	}

	surfaceToComment := make(map[string]string)
	for vm := range engine.SearchKey(resp, "commentViewModel") {
		inner := vm.Get("commentViewModel")
		if inner.Has("commentSurfaceKey") {
			surfaceToComment[inner.Get("commentSurfaceKey").Text()] = inner.Get("commentId").Text()
		}
	}

	payments := make(map[string]string, len(bySurface))
	for key, text := range bySurface {
		if cid, ok := surfaceToComment[key]; ok {
			payments[cid] = text
		}
	}
	return payments
}

// toolbarStates indexes toolbar state payloads by their own key.
func toolbarStates(resp *engine.Node) map[string]*engine.Node {
	states := make(map[string]*engine.Node)
	for p := range engine.SearchKey(resp, "engagementToolbarStateEntityPayload") {
		states[p.Get("key").Text()] = p
	}
	return states
}
