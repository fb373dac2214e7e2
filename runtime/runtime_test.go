package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRuntimeFallsBack(t *testing.T) {
	ctx := context.Background()
	var r *Runtime

	_, err := r.Input().Get(ctx, "deck.dsh")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, r.Output().Put(ctx, "slide.svg", []byte("<svg/>"), "image/svg+xml"))

	list, err := r.Output().List(ctx, "", "/")
	require.NoError(t, err)
	assert.Empty(t, list.Keys)

	_, err = r.Store().Get(ctx, "current-slide")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, r.Events().Publish(ctx, "deck.processed", nil))
}

func TestGlobalAccessors(t *testing.T) {
	prev := Current
	t.Cleanup(func() { SetRuntime(prev) })

	kv := NewMemoryKV()
	in := NewMemoryStorage()
	SetRuntime(&Runtime{InputStorage: in, KV: kv})

	assert.Same(t, in, Input())
	assert.Same(t, kv, KV())
	_, err := Output().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, NoopPublisher{}, Events())
}
