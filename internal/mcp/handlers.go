package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// slideArg reads a 1-based slide number and checks it against the deck
func (s *Server) slideArg(request mcp.CallToolRequest, fallback int) (int, *mcp.CallToolResult) {
	n := request.GetInt("slide", fallback)
	if n < 1 || n > s.session.Deck.Len() {
		return 0, mcp.NewToolResultError(fmt.Sprintf("slide must be between 1 and %d", s.session.Deck.Len()))
	}
	return n, nil
}

func (s *Server) handleDeckOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Overview()), nil
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: action"), nil
	}

	p := s.session.Presenter
	switch action {
	case "next":
		p.Next()
	case "previous":
		p.Previous()
	case "first":
		p.First()
	case "last":
		p.Last()
	case "goto":
		n, errResult := s.slideArg(request, 0)
		if errResult != nil {
			return errResult, nil
		}
		p.GoTo(n)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
	return jsonResult(p.State()), nil
}

func (s *Server) handleJumpToSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	if !s.session.Presenter.JumpToSection(name) {
		sections := s.session.Presenter.Sections()
		names := make([]string, 0, len(sections))
		for n := range sections {
			names = append(names, n)
		}
		sort.Strings(names)
		return mcp.NewToolResultError(fmt.Sprintf("unknown section %q; known sections: %s", name, strings.Join(names, ", "))), nil
	}
	return jsonResult(s.session.Presenter.State()), nil
}

func (s *Server) handleTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: action"), nil
	}

	p := s.session.Presenter
	switch action {
	case "start":
		p.StartTimer()
	case "stop":
		p.StopTimer()
	case "reset":
		p.ResetTimer()
	case "toggle":
		p.ToggleTimer()
	case "duration":
		minutes := request.GetInt("minutes", 0)
		if minutes < 1 {
			return mcp.NewToolResultError("minutes must be at least 1"), nil
		}
		p.SetTimerDuration(minutes)
	case "status":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
	return jsonResult(p.Timer()), nil
}

func (s *Server) handleSetTheme(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	if !s.session.Presenter.SetTheme(name) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown theme %q; known themes: %s",
			name, strings.Join(s.session.Presenter.Themes(), ", "))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Theme set to %s.", name)), nil
}

func (s *Server) handleListBookmarks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookmarks := s.session.Store.Bookmarks(ctx)
	if len(bookmarks) == 0 {
		return mcp.NewToolResultText("No bookmarks yet."), nil
	}
	slides := make([]int, 0, len(bookmarks))
	for n := range bookmarks {
		slides = append(slides, n)
	}
	sort.Ints(slides)

	var b strings.Builder
	for _, n := range slides {
		fmt.Fprintf(&b, "- Slide %d: %s\n", n, bookmarks[n])
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleAddBookmark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.slideArg(request, 0)
	if errResult != nil {
		return errResult, nil
	}
	label := request.GetString("label", "")
	if label == "" {
		titles := s.session.Deck.Titles()
		label = titles[n-1]
	}
	if err := s.session.Store.AddBookmark(ctx, n, label); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving bookmark: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Bookmarked slide %d as %q.", n, label)), nil
}

func (s *Server) handleRemoveBookmark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.slideArg(request, 0)
	if errResult != nil {
		return errResult, nil
	}
	if err := s.session.Store.RemoveBookmark(ctx, n); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("removing bookmark: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed the bookmark of slide %d.", n)), nil
}

func (s *Server) handleGetNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.slideArg(request, s.session.Presenter.Current())
	if errResult != nil {
		return errResult, nil
	}
	text := s.session.Store.Note(n)
	if text == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Slide %d has no note.", n)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleAddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.slideArg(request, 0)
	if errResult != nil {
		return errResult, nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	if err := s.session.Store.AddNote(ctx, n, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving note: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved the note of slide %d.", n)), nil
}

func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Stats.Stats()), nil
}

func (s *Server) handleToggleRehearsal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Rehearsal.Toggle()
	return jsonResult(s.session.Rehearsal.Stats()), nil
}

func (s *Server) handleGetSlide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.slideArg(request, 0)
	if errResult != nil {
		return errResult, nil
	}
	svg, _ := s.session.Deck.SVG(n)
	title := s.session.Deck.Titles()[n-1]
	return mcp.NewToolResultText(fmt.Sprintf("# %s\n\n%s", title, svg)), nil
}
