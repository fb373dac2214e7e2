//go:build !js && !cloudflare

package slides

import (
	"context"
	"testing"

	"github.com/joeblew999/deckshow/internal/render"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const talk = `import "lib/banner.dsh"
deck
  slide
    text "Welcome" 50 70 6
    text "subtitle" 50 40 2
  eslide
  slide
    banner "Agenda"
    blist 10 70 2
      li "one"
      li "two"
    elist
  eslide
  slide
  eslide
edeck
`

const banner = `def banner label
  ctext label 50 90 3
edef
`

func TestLoad(t *testing.T) {
	ctx := context.Background()
	storage, err := runtime.NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, storage.Put(ctx, "talks/talk.dsh", []byte(talk), "text/plain"))
	require.NoError(t, storage.Put(ctx, "talks/lib/banner.dsh", []byte(banner), "text/plain"))

	reg, err := Load(ctx, storage, "talks/talk.dsh", pipeline.NewInProcessPipeline(render.DefaultOptions()))
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	first, ok := reg.At(0)
	require.True(t, ok)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Welcome", first.Title)
	assert.Equal(t, []string{"Welcome", "subtitle"}, first.Text)

	second, _ := reg.At(1)
	assert.Equal(t, "Agenda", second.Title)
	assert.Contains(t, second.Text, "- one")
	assert.Contains(t, second.Text, "- two")

	third, _ := reg.At(2)
	assert.Equal(t, "Slide 3", third.Title)

	svg, ok := reg.SVG(1)
	require.True(t, ok)
	assert.Contains(t, string(svg), "Welcome")

	_, ok = reg.SVG(0)
	assert.False(t, ok)
	_, ok = reg.SVG(4)
	assert.False(t, ok)
	_, ok = reg.At(-1)
	assert.False(t, ok)

	assert.Len(t, reg.Titles(), 3)
	assert.NotEmpty(t, reg.XML())
}

func TestLoadMissingDeck(t *testing.T) {
	_, err := Load(context.Background(), runtime.NewMemoryStorage(), "nope.dsh", pipeline.NewInProcessPipeline(render.DefaultOptions()))
	assert.ErrorIs(t, err, runtime.ErrNotFound)
}

func TestNewRejectsEmptyDeck(t *testing.T) {
	_, err := New(&pipeline.Result{Format: pipeline.FormatSVG})
	assert.ErrorIs(t, err, ErrEmptyDeck)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestNewFromSlidesOnly(t *testing.T) {
	reg, err := New(&pipeline.Result{
		Format: pipeline.FormatSVG,
		Slides: [][]byte{[]byte("<svg/>"), []byte("<svg/>")},
		Title:  "Deck",
	})
	require.NoError(t, err)
	assert.Equal(t, "Deck", reg.Title())
	assert.Equal(t, []string{"Slide 1", "Slide 2"}, reg.Titles())
}
