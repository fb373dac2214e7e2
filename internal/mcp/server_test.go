package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/deckshow/internal/presenter"
	"github.com/joeblew999/deckshow/internal/session"
	"github.com/joeblew999/deckshow/internal/stats"
)

type fakeDeck int

func (d fakeDeck) Len() int      { return int(d) }
func (d fakeDeck) Title() string { return "STEAM en la Escuela" }
func (d fakeDeck) XML() []byte   { return []byte("<deck/>") }

func (d fakeDeck) SVG(n int) ([]byte, bool) {
	if n < 1 || n > int(d) {
		return nil, false
	}
	return []byte(fmt.Sprintf(`<svg id="s%d"></svg>`, n)), true
}

func (d fakeDeck) Titles() []string {
	out := make([]string, d)
	for i := range out {
		out[i] = fmt.Sprintf("Slide %d", i+1)
	}
	return out
}

func newServer(t *testing.T) *Server {
	t.Helper()
	sess := session.New(context.Background(), fakeDeck(23), session.Options{
		Scheduler: presenter.NewManualScheduler(),
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	sess.Start("")
	t.Cleanup(sess.Close)
	return NewServer(sess)
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tools := []mcp.Tool{
		deckOverviewTool, navigateTool, jumpToSectionTool, timerTool, setThemeTool,
		listBookmarksTool, addBookmarkTool, removeBookmarkTool, getNoteTool,
		addNoteTool, getStatsTool, toggleRehearsalTool, getSlideTool,
	}
	seen := make(map[string]bool)
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
	}
}

func TestNewServer(t *testing.T) {
	srv := newServer(t)
	require.NotNil(t, srv.mcp)
	assert.NotNil(t, srv.Handler())
}

func TestHandleNavigate(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	tests := []struct {
		args    map[string]any
		want    int
		isError bool
	}{
		{map[string]any{"action": "next"}, 2, false},
		{map[string]any{"action": "last"}, 23, false},
		{map[string]any{"action": "next"}, 1, false},
		{map[string]any{"action": "goto", "slide": 11}, 11, false},
		{map[string]any{"action": "goto", "slide": 40}, 11, true},
		{map[string]any{"action": "goto"}, 11, true},
		{map[string]any{"action": "sideways"}, 11, true},
		{map[string]any{}, 11, true},
	}
	for _, tt := range tests {
		result, err := srv.handleNavigate(ctx, call(tt.args))
		require.NoError(t, err)
		assert.Equal(t, tt.isError, result.IsError, "%v", tt.args)
		assert.Equal(t, tt.want, srv.session.Presenter.Current(), "%v", tt.args)
	}
}

func TestHandleNavigateReturnsState(t *testing.T) {
	srv := newServer(t)
	result, err := srv.handleNavigate(context.Background(), call(map[string]any{"action": "goto", "slide": float64(5)}))
	require.NoError(t, err)

	var st presenter.State
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &st))
	assert.Equal(t, 5, st.Current)
	assert.Equal(t, 23, st.Total)
}

func TestHandleJumpToSection(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	result, err := srv.handleJumpToSection(ctx, call(map[string]any{"name": " Methodology "}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 9, srv.session.Presenter.Current())

	result, err = srv.handleJumpToSection(ctx, call(map[string]any{"name": "appendix"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "results")
}

func TestHandleTimer(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	result, err := srv.handleTimer(ctx, call(map[string]any{"action": "duration", "minutes": 15}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, "15:00", srv.session.Presenter.Timer().Display)

	result, err = srv.handleTimer(ctx, call(map[string]any{"action": "duration"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	_, err = srv.handleTimer(ctx, call(map[string]any{"action": "toggle"}))
	require.NoError(t, err)
	assert.True(t, srv.session.Presenter.Timer().Running)

	result, err = srv.handleTimer(ctx, call(map[string]any{"action": "status"}))
	require.NoError(t, err)
	var st presenter.TimerState
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &st))
	assert.True(t, st.Running)
	assert.Equal(t, 15, st.Duration)
}

func TestHandleSetTheme(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	result, err := srv.handleSetTheme(ctx, call(map[string]any{"name": "light"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "light", srv.session.Presenter.State().Theme)

	result, err = srv.handleSetTheme(ctx, call(map[string]any{"name": "neon"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestBookmarkTools(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	result, err := srv.handleListBookmarks(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "No bookmarks yet.", text(t, result))

	_, err = srv.handleAddBookmark(ctx, call(map[string]any{"slide": 11, "label": "Resultados"}))
	require.NoError(t, err)
	_, err = srv.handleAddBookmark(ctx, call(map[string]any{"slide": 3}))
	require.NoError(t, err)

	result, err = srv.handleListBookmarks(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "- Slide 3: Slide 3\n- Slide 11: Resultados\n", text(t, result))

	_, err = srv.handleRemoveBookmark(ctx, call(map[string]any{"slide": 3}))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{11: "Resultados"}, srv.session.Store.Bookmarks(ctx))

	result, err = srv.handleAddBookmark(ctx, call(map[string]any{"slide": 0}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestNoteTools(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	result, err := srv.handleGetNote(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "Slide 1 has no note.", text(t, result))

	_, err = srv.handleAddNote(ctx, call(map[string]any{"slide": 1, "text": "Saludo inicial"}))
	require.NoError(t, err)

	result, err = srv.handleGetNote(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "Saludo inicial", text(t, result))

	result, err = srv.handleAddNote(ctx, call(map[string]any{"slide": 2}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestStatsTools(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	srv.session.Presenter.Next()

	result, err := srv.handleGetStats(ctx, call(nil))
	require.NoError(t, err)
	var st stats.Stats
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &st))
	assert.Equal(t, map[int]int{1: 1, 2: 1}, st.Visits)

	result, err = srv.handleToggleRehearsal(ctx, call(nil))
	require.NoError(t, err)
	var r stats.RehearsalStats
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &r))
	assert.True(t, r.Active)
	assert.Nil(t, r.Best)
}

func TestHandleGetSlide(t *testing.T) {
	srv := newServer(t)
	result, err := srv.handleGetSlide(context.Background(), call(map[string]any{"slide": 2}))
	require.NoError(t, err)
	assert.Equal(t, "# Slide 2\n\n<svg id=\"s2\"></svg>", text(t, result))
}

func TestHandleDeckOverview(t *testing.T) {
	srv := newServer(t)
	result, err := srv.handleDeckOverview(context.Background(), call(nil))
	require.NoError(t, err)

	var o session.Overview
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &o))
	assert.Equal(t, "STEAM en la Escuela", o.Title)
	assert.Equal(t, 22, o.Sections["thanks"])
}
