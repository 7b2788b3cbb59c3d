package observability

import (
	"context"
	"errors"
	"testing"

	"investigation-canvas/domain/core/aggregates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	saved  []string
	scene  *aggregates.Scene
	err    error
	loaded []string
}

func (s *stubStore) Save(_ context.Context, scene *aggregates.Scene) error {
	s.saved = append(s.saved, scene.InvestigationID())
	return s.err
}

func (s *stubStore) Load(_ context.Context, id string) (*aggregates.Scene, error) {
	s.loaded = append(s.loaded, id)
	return s.scene, s.err
}

func TestTracingStore_PassesThrough(t *testing.T) {
	scene, err := aggregates.NewScene("inv-t", nil)
	require.NoError(t, err)

	next := &stubStore{scene: scene}
	store := NewTracingStore(next, NewTracer("canvas"))

	require.NoError(t, store.Save(context.Background(), scene))
	got, err := store.Load(context.Background(), "inv-t")
	require.NoError(t, err)

	assert.Same(t, scene, got)
	assert.Equal(t, []string{"inv-t"}, next.saved)
	assert.Equal(t, []string{"inv-t"}, next.loaded)
}

func TestTracingStore_PropagatesErrors(t *testing.T) {
	scene, err := aggregates.NewScene("inv-t", nil)
	require.NoError(t, err)

	boom := errors.New("unavailable")
	store := NewTracingStore(&stubStore{err: boom}, NewTracer("canvas"))

	assert.ErrorIs(t, store.Save(context.Background(), scene), boom)
	_, err = store.Load(context.Background(), "inv-t")
	assert.ErrorIs(t, err, boom)
}
