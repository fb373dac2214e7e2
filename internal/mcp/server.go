// Package mcp exposes a running presentation as MCP tools, so assistants can
// navigate slides, manage bookmarks and notes, and read session statistics.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/joeblew999/deckshow/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over one session.
type Server struct {
	session *session.Session
	mcp     *server.MCPServer
}

// NewServer creates an MCP server driving sess.
func NewServer(sess *session.Session) *Server {
	s := &Server{session: sess}

	s.mcp = server.NewMCPServer(
		"deckshow",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(deckOverviewTool, s.handleDeckOverview)
	s.mcp.AddTool(navigateTool, s.handleNavigate)
	s.mcp.AddTool(jumpToSectionTool, s.handleJumpToSection)
	s.mcp.AddTool(timerTool, s.handleTimer)
	s.mcp.AddTool(setThemeTool, s.handleSetTheme)
	s.mcp.AddTool(listBookmarksTool, s.handleListBookmarks)
	s.mcp.AddTool(addBookmarkTool, s.handleAddBookmark)
	s.mcp.AddTool(removeBookmarkTool, s.handleRemoveBookmark)
	s.mcp.AddTool(getNoteTool, s.handleGetNote)
	s.mcp.AddTool(addNoteTool, s.handleAddNote)
	s.mcp.AddTool(getStatsTool, s.handleGetStats)
	s.mcp.AddTool(toggleRehearsalTool, s.handleToggleRehearsal)
	s.mcp.AddTool(getSlideTool, s.handleGetSlide)
}

// Handler serves the tools over streamable HTTP
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
