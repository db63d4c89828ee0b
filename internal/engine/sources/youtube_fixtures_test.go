package sources

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/stretchr/testify/require"
)

// Fixture builders for the watch page and continuation responses.

type (
	M = map[string]any
	A = []any
)

const testAPIKey = "test-key"

func ep(token string) M {
	return M{
		"commandMetadata":     M{"webCommandMetadata": M{"apiUrl": "/youtubei/v1/next"}},
		"continuationCommand": M{"token": token},
	}
}

func mustJSON(t testing.TB, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

var testYtcfg = M{
	"INNERTUBE_API_KEY": testAPIKey,
	"INNERTUBE_CONTEXT": M{"client": M{"hl": "en", "gl": "US", "clientName": "WEB", "clientVersion": "2.20240101"}},
}

func watchPage(t testing.TB, ytcfg, data M) string {
	t.Helper()
	page := "<html><head><script>"
	if ytcfg != nil {
		page += "ytcfg.set(" + mustJSON(t, ytcfg) + "); window.ytcfg.set('EXPERIMENT', {\"x\": 1});"
	}
	page += "</script></head><body><script>"
	if data != nil {
		page += "var ytInitialData = " + mustJSON(t, data) + ";"
	}
	return page + "</script></body></html>"
}

// watchData is an initial page state with a comments section and one sort menu
// entry per token.
func watchData(sortTokens ...string) M {
	items := A{}
	for _, tok := range sortTokens {
		items = append(items, M{"title": "sort " + tok, "serviceEndpoint": ep(tok)})
	}
	return M{"contents": M{"twoColumnWatchNextResults": M{"results": M{"results": M{"contents": A{
		M{"itemSectionRenderer": M{
			"contents": A{M{"continuationItemRenderer": M{"continuationEndpoint": ep("entry")}}},
			"header": A{M{"commentsHeaderRenderer": M{"sortMenu": M{
				"sortFilterSubMenuRenderer": M{"subMenuItems": items},
			}}}},
		}},
	}}}}}}
}

func batch(actions A, mutations ...any) M {
	return M{
		"onResponseReceivedEndpoints": actions,
		"frameworkUpdates":            M{"entityBatchUpdate": M{"mutations": A(mutations)}},
	}
}

func action(kind, target string, items ...any) M {
	return M{kind: M{"targetId": target, "continuationItems": A(items)}}
}

func moreComments(token string) M {
	return M{"continuationItemRenderer": M{"continuationEndpoint": ep(token)}}
}

func threadWithReplies(cid, token string) M {
	return M{"commentThreadRenderer": M{
		"commentViewModel": M{"commentViewModel": M{"commentId": cid}},
		"replies": M{"commentRepliesRenderer": M{"contents": A{
			M{"continuationItemRenderer": M{"continuationEndpoint": ep(token)}},
		}}},
	}}
}

func moreRepliesButton(token string) M {
	return M{"continuationItemRenderer": M{"button": M{"buttonRenderer": M{"command": ep(token)}}}}
}

func paidThread(cid, surfaceKey string) M {
	return M{"commentThreadRenderer": M{
		"commentViewModel": M{"commentViewModel": M{"commentId": cid, "commentSurfaceKey": surfaceKey}},
	}}
}

func commentMutation(cid, toolbarKey, likes, published string) M {
	return M{"payload": M{"commentEntityPayload": M{
		"properties": M{
			"commentId":       cid,
			"content":         M{"content": "text of " + cid},
			"publishedTime":   published,
			"toolbarStateKey": toolbarKey,
		},
		"author": M{
			"displayName":        "@author-" + cid,
			"channelId":          "UC-" + cid,
			"avatarThumbnailUrl": "https://yt3.example/" + cid + ".jpg",
		},
		"toolbar": M{"likeCountNotliked": likes, "replyCount": "2"},
	}}}
}

func toolbarMutation(key, heart string) M {
	return M{"payload": M{"engagementToolbarStateEntityPayload": M{"key": key, "heartState": heart}}}
}

func surfaceMutation(key, chip string) M {
	return M{"payload": M{"commentSurfaceEntityPayload": M{
		"key":            key,
		"pdgCommentChip": M{"pdgCommentChipRenderer": M{"chipText": M{"simpleText": chip}}},
	}}}
}

// fakeYouTube serves a page at every path and answers continuation POSTs by token.
type fakeYouTube struct {
	t    *testing.T
	page string

	mu        sync.Mutex
	responses map[string]string
	status    map[string]int
	flaky     map[string]int
	tokens    []string
	queries   []url.Values
	bodies    []*engine.Node
	hits      map[string]int
}

func newFakeYouTube(t *testing.T, page string) (*fakeYouTube, *httptest.Server) {
	t.Helper()
	f := &fakeYouTube{
		t:         t,
		page:      page,
		responses: make(map[string]string),
		status:    make(map[string]int),
		flaky:     make(map[string]int),
		hits:      make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(f.page))
	})
	mux.HandleFunc("/youtubei/v1/next", f.serveContinuation)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeYouTube) respond(token string, body M) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[token] = mustJSON(f.t, body)
}

func (f *fakeYouTube) fail(token string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[token] = status
}

// flake makes the next n requests for token answer 503.
func (f *fakeYouTube) flake(token string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flaky[token] = n
}

func (f *fakeYouTube) serveContinuation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Query().Get("key") != testAPIKey {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	body, err := engine.DecodeNode(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token := body.Get("continuation").Text()

	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.queries = append(f.queries, r.URL.Query())
	f.bodies = append(f.bodies, body)
	f.hits[token]++
	status, failing := f.status[token]
	if !failing && f.flaky[token] > 0 {
		f.flaky[token]--
		status, failing = http.StatusServiceUnavailable, true
	}
	resp, ok := f.responses[token]
	f.mu.Unlock()

	if failing {
		w.WriteHeader(status)
		return
	}
	if !ok {
		resp = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(resp))
}

func (f *fakeYouTube) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *fakeYouTube) hitCount(token string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[token]
}

func testConfig(baseURL string) engine.Config {
	c := engine.DefaultConfig()
	c.BaseURL = baseURL
	c.ConsentURL = baseURL + "/consent/save"
	c.Retry = engine.RetryConfig{Attempts: 3, Sleep: time.Millisecond, Timeout: 2 * time.Second}
	c.BatchSleep = 0
	return c
}

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	s, err := NewSession(testConfig(baseURL))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func collect(t *testing.T, seq func(func(engine.CommentRecord, error) bool)) ([]engine.CommentRecord, error) {
	t.Helper()
	var out []engine.CommentRecord
	for rec, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func cids(recs []engine.CommentRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.CID
	}
	return out
}
