package engine

// Sort orders exposed by the comments sort menu. The numeric values are the
// menu positions and are part of the public contract.
const (
	SortPopular = 0
	SortRecent  = 1
)

// --- Comment record ---

// CommentRecord is one flattened comment or reply.
type CommentRecord struct {
	CID        string   `json:"cid"`
	Text       string   `json:"text"`
	Time       string   `json:"time"`
	Author     string   `json:"author"`
	Channel    string   `json:"channel"`
	Votes      string   `json:"votes"`
	Replies    string   `json:"replies"`
	Photo      string   `json:"photo"`
	Heart      bool     `json:"heart"`
	Reply      bool     `json:"reply"`
	TimeParsed *float64 `json:"time_parsed,omitempty"` // epoch seconds
	Paid       *string  `json:"paid,omitempty"`
}

// --- MCP tool types ---

// CommentsInput is the input for the youtube_comments tool.
type CommentsInput struct {
	VideoID  string `json:"video_id,omitempty" jsonschema:"YouTube video ID (e.g. dQw4w9WgXcQ). Either video_id or url is required"`
	URL      string `json:"url,omitempty" jsonschema:"Full YouTube URL (watch page, shorts or community post)"`
	Sort     *int   `json:"sort,omitempty" jsonschema:"0 = popular, 1 = recent (default: 1)"`
	Language string `json:"language,omitempty" jsonschema:"Language for YouTube generated text such as relative dates (e.g. en)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max comments to return (default: 100)"`
}

// CommentsOutput is the structured output for youtube_comments.
type CommentsOutput struct {
	Video    string          `json:"video"`
	Count    int             `json:"count"`
	Comments []CommentRecord `json:"comments"`
}
