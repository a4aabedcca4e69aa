package gueststore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	g := New(fs, nil)
	_, err = g.AddCartLine("A123", "36", 2, UnknownStock)
	require.NoError(t, err)
	_, err = g.AddFavorite("B456")
	require.NoError(t, err)

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	g2 := New(reopened, nil)
	assert.Len(t, g2.ReadCart(), 1)
	assert.Equal(t, []string{"B456"}, g2.ReadFavorites())

	require.NoError(t, g2.Clear())
	_, ok := reopened.Get(KeyCart)
	assert.False(t, ok)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, New(fs, nil).ReadCart())

	require.NoError(t, fs.Set(KeySessionID, "abc"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionId":"abc"}`, string(raw))
}

func TestFileStore_WatchSeesOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	mine, err := OpenFileStore(path)
	require.NoError(t, err)
	theirs, err := OpenFileStore(path)
	require.NoError(t, err)

	g := New(mine, nil)
	events := make(chan Event, 16)
	g.Bus().Subscribe(func(e Event) {
		select {
		case events <- e:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Follow(ctx, mine) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// The watcher registers asynchronously, so keep writing until it reports.
	other := New(theirs, nil)
	var got Event
	for i := 0; i < 50 && got.Kind == ""; i++ {
		_, err := other.AddFavorite("X" + string(rune('A'+i%26)))
		require.NoError(t, err)
		select {
		case got = <-events:
		case <-time.After(100 * time.Millisecond):
		}
	}

	require.Equal(t, ExternalChange, got.Kind)
	assert.Positive(t, got.FavoritesCount)
	assert.NotEmpty(t, g.ReadFavorites())
}
