package sources

import (
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	dps "github.com/markusmobius/go-dateparser"
)

// buildRecord flattens one commentEntityPayload. toolbar and payments must
// already hold every entry of the response batch the payload came from.
func buildRecord(comment *engine.Node, toolbar map[string]*engine.Node, payments map[string]string, now time.Time) engine.CommentRecord {
	props := comment.Get("properties")
	author := comment.Get("author")
	bar := comment.Get("toolbar")
	state := toolbar[props.Get("toolbarStateKey").Text()]

	cid := props.Get("commentId").Text()
	votes := strings.TrimSpace(bar.Get("likeCountNotliked").Text())
	if votes == "" {
		votes = "0"
	}

	rec := engine.CommentRecord{
		CID:     cid,
		Text:    props.Path("content", "content").Text(),
		Time:    props.Get("publishedTime").Text(),
		Author:  author.Get("displayName").Text(),
		Channel: author.Get("channelId").Text(),
		Votes:   votes,
		Replies: bar.Get("replyCount").Text(),
		Photo:   author.Get("avatarThumbnailUrl").Text(),
		Heart:   state.Get("heartState").Text() == ytHeartedState,
		Reply:   strings.Contains(cid, "."),
	}
	if ts, ok := parsePublishedTime(rec.Time, now); ok {
		rec.TimeParsed = &ts
	}
	if paid, ok := payments[cid]; ok {
		rec.Paid = &paid
	}
	return rec
}

// parsePublishedTime turns a display time such as "3 days ago (edited)" into
// epoch seconds relative to now. The trailing parenthetical is ignored.
func parsePublishedTime(raw string, now time.Time) (float64, bool) {
	s, _, _ := strings.Cut(raw, "(")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	dt, err := dps.Parse(&dps.Configuration{CurrentTime: now}, s)
	if err != nil || dt.Time.IsZero() {
		return 0, false
	}
	return float64(dt.Time.UnixNano()) / 1e9, true
}
