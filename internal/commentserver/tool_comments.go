package commentserver

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
	"github.com/anatolykoptev/go_ytcomments/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultToolLimit = 100

// fetchComments is swapped in tests.
var fetchComments = sources.FetchYouTubeCommentsFromURL

func registerYouTubeComments(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_comments",
		Description: "Download comments and replies of a YouTube video, short or community post without the official API. Returns flat comment records (id, text, author, channel, votes, reply count, heart, paid chip, published time) in crawl order: top-level pages first, queued reply pages after. Use sort=0 for popular, sort=1 (default) for newest.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.CommentsInput) (*mcp.CallToolResult, engine.CommentsOutput, error) {
		out, err := DownloadComments(ctx, input)
		if err != nil {
			return nil, engine.CommentsOutput{}, err
		}
		return nil, out, nil
	})
}

// DownloadComments runs one bounded download for the tool. The limit is
// applied by ceasing to consume the crawl.
func DownloadComments(ctx context.Context, input engine.CommentsInput) (engine.CommentsOutput, error) {
	id, pageURL, err := toolutil.PageTarget(input.VideoID, input.URL)
	if err != nil {
		return engine.CommentsOutput{}, err
	}
	if pageURL == "" {
		pageURL = sources.VideoURL(id)
	}
	video := id
	if video == "" {
		video = pageURL
	}

	sort := toolutil.NormSort(input.Sort)
	lang := toolutil.NormLang(input.Language)
	limit := toolutil.NormLimit(input.Limit, defaultToolLimit, engine.Cfg.MaxToolComments)

	cacheKey := engine.CacheKey("youtube_comments", pageURL, strconv.Itoa(sort), lang, strconv.Itoa(limit))
	if out, ok := engine.CacheLoadJSON[engine.CommentsOutput](cacheKey); ok {
		return out, nil
	}

	opts := sources.DefaultCommentOptions()
	opts.SortBy = sort
	opts.Language = lang
	seq, err := fetchComments(ctx, pageURL, opts)
	if err != nil {
		return engine.CommentsOutput{}, err
	}

	out := engine.CommentsOutput{Video: video, Comments: make([]engine.CommentRecord, 0, min(limit, 64))}
	partial := false
	for rec, err := range seq {
		if err != nil {
			if len(out.Comments) == 0 {
				return engine.CommentsOutput{}, err
			}
			slog.Warn("youtube_comments: crawl ended early", slog.String("video", video), slog.Any("error", err))
			partial = true
			break
		}
		if n := engine.Cfg.MaxToolTextRunes; n > 0 {
			rec.Text = engine.TruncateRunes(rec.Text, n, "...")
		}
		out.Comments = append(out.Comments, rec)
		if len(out.Comments) >= limit {
			break
		}
	}
	out.Count = len(out.Comments)

	if !partial {
		engine.CacheStoreJSON(cacheKey, out)
	}
	return out, nil
}
