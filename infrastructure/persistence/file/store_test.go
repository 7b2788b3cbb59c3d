package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"investigation-canvas/infrastructure/persistence"
	"investigation-canvas/infrastructure/persistence/backendtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Backend(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) persistence.Backend {
		s, err := Open(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestStore_FileLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "canvas")
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "canvas_inv/7", []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "canvas_inv%2F7.json", entries[0].Name(), "keys are escaped and no temp file is left behind")
}

func TestStore_PutLeavesNoTempFiles(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		writers int
		want    string
	}{
		{name: "single writer", key: "canvas_a", writers: 1, want: "canvas_a.json"},
		{name: "many writers", key: "canvas_a", writers: 8, want: "canvas_a.json"},
		{name: "escaped key", key: "canvas_inv/7", writers: 4, want: "canvas_inv%2F7.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := Open(dir)
			require.NoError(t, err)

			done := make(chan error, tt.writers)
			for i := 0; i < tt.writers; i++ {
				go func() { done <- s.Put(context.Background(), tt.key, []byte(`{"v":1}`)) }()
			}
			for i := 0; i < tt.writers; i++ {
				require.NoError(t, <-done)
			}

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Name())

			info, err := entries[0].Info()
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
		})
	}
}

func TestStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas_x.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas_y.json.tmp"), []byte("x"), 0644))

	keys, err := s.Keys(context.Background(), "canvas_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
