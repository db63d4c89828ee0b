// Package commentserver exposes the comment downloader as MCP tools.
package commentserver

import "github.com/modelcontextprotocol/go-sdk/mcp"

// RegisterTools registers all comment tools on the given MCP server:
// youtube_comments.
func RegisterTools(server *mcp.Server) {
	registerYouTubeComments(server)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 1
