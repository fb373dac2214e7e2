//go:build !js && !wasip1

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/deckshow/internal/presenter"
	"github.com/joeblew999/deckshow/runtime"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrentSlideRoundTrip(t *testing.T) {
	kv := runtime.NewMemoryKV()
	s := New(context.Background(), kv, DefaultPrefix, quiet())

	_, ok := s.LoadCurrent()
	assert.False(t, ok)

	s.SaveCurrent(7)
	n, ok := s.LoadCurrent()
	require.True(t, ok)
	assert.Equal(t, 7, n)

	raw, err := kv.Get(context.Background(), "steam-presentation-current-slide")
	require.NoError(t, err)
	assert.Equal(t, "7", string(raw))
}

func TestRestoresPresenter(t *testing.T) {
	kv := runtime.NewMemoryKV()
	s := New(context.Background(), kv, "deck-", quiet())
	s.SaveCurrent(4)

	p := presenter.New(slideCount(6),
		presenter.WithStore(s),
		presenter.WithScheduler(presenter.NewManualScheduler()),
		presenter.WithLogger(quiet()),
	)
	defer p.Close()
	p.Restore("")
	assert.Equal(t, 4, p.Current())

	p.Next()
	n, _ := s.LoadCurrent()
	assert.Equal(t, 5, n)
}

type slideCount int

func (c slideCount) Len() int { return int(c) }

func TestBookmarks(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, runtime.NewMemoryKV(), DefaultPrefix, quiet())

	assert.Empty(t, s.Bookmarks(ctx))
	require.NoError(t, s.AddBookmark(ctx, 3, "barriers"))
	require.NoError(t, s.AddBookmark(ctx, 11, "results"))
	require.NoError(t, s.AddBookmark(ctx, 3, "access"))
	assert.Equal(t, map[int]string{3: "access", 11: "results"}, s.Bookmarks(ctx))

	require.NoError(t, s.RemoveBookmark(ctx, 3))
	require.NoError(t, s.RemoveBookmark(ctx, 99))
	assert.Equal(t, map[int]string{11: "results"}, s.Bookmarks(ctx))
}

func TestMalformedBlobsReadEmpty(t *testing.T) {
	ctx := context.Background()
	kv := runtime.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, "p-bookmarks", []byte("{not json")))
	require.NoError(t, kv.Put(ctx, "p-presenter-notes", []byte(`["a"]`)))
	require.NoError(t, kv.Put(ctx, "p-current-slide", []byte(`"three"`)))

	s := New(ctx, kv, "p-", quiet())
	assert.Empty(t, s.Bookmarks(ctx))
	assert.Empty(t, s.NoteSlides())
	_, ok := s.LoadCurrent()
	assert.False(t, ok)

	require.NoError(t, s.AddBookmark(ctx, 2, "fixed"))
	assert.Equal(t, map[int]string{2: "fixed"}, s.Bookmarks(ctx))
}

func TestNotesSurviveReconstruction(t *testing.T) {
	ctx := context.Background()
	kv := runtime.NewMemoryKV()
	s := New(ctx, kv, DefaultPrefix, quiet())

	assert.Equal(t, "", s.Note(1))
	require.NoError(t, s.AddNote(ctx, 1, "Open with the **35%** figure"))
	require.NoError(t, s.AddNote(ctx, 9, "phases"))

	again := New(ctx, kv, DefaultPrefix, quiet())
	assert.Equal(t, "Open with the **35%** figure", again.Note(1))
	assert.Equal(t, []int{1, 9}, again.NoteSlides())

	html, err := again.NoteHTML(1)
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>35%</strong>")

	html, err = again.NoteHTML(2)
	require.NoError(t, err)
	assert.Empty(t, html)
}

type failingKV struct{ runtime.KVStore }

func (failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func (failingKV) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("read only")
}

func TestBackendErrors(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, failingKV{}, DefaultPrefix, quiet())

	assert.Empty(t, s.Bookmarks(ctx))
	assert.NotPanics(t, func() { s.SaveCurrent(2) })
	_, ok := s.LoadCurrent()
	assert.False(t, ok)

	err := s.AddBookmark(ctx, 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steam-presentation-bookmarks")
}

func TestWithSQLite(t *testing.T) {
	kv, err := runtime.OpenMemorySQLiteKV()
	require.NoError(t, err)
	defer kv.Close()

	ctx := context.Background()
	s := New(ctx, kv, DefaultPrefix, quiet())
	require.NoError(t, s.AddBookmark(ctx, 5, "methods"))
	require.NoError(t, s.AddNote(ctx, 5, "slow down"))

	again := New(ctx, kv, DefaultPrefix, quiet())
	assert.Equal(t, map[int]string{5: "methods"}, again.Bookmarks(ctx))
	assert.Equal(t, "slow down", again.Note(5))
}
