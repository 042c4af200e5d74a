package kvmap

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	store, err := Open[int](filepath.Join(t.TempDir(), "counter.json"))
	require.NoError(t, err)

	val, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Zero(t, val)
}

func TestPutPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.json")

	store, err := Open[string](path)
	require.NoError(t, err)
	require.NoError(t, store.Put("a", "digest-a"))
	require.NoError(t, store.Put("b", "digest-b"))

	reopened, err := Open[string](path)
	require.NoError(t, err)

	val, ok := reopened.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "digest-a", val)
	assert.Equal(t, 2, reopened.Len())
}

func TestUpdateAppliesZeroValueForAbsentKey(t *testing.T) {
	store, err := Open[int](filepath.Join(t.TempDir(), "counter.json"))
	require.NoError(t, err)

	next, err := store.Update("code", func(cur int) int { return cur + 1 })
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	next, err = store.Update("code", func(cur int) int { return cur + 1 })
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestConcurrentUpdatesLoseNoWrites(t *testing.T) {
	store, err := Open[int](filepath.Join(t.TempDir(), "counter.json"))
	require.NoError(t, err)

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := store.Update("shared", func(cur int) int { return cur + 1 })
				assert.NoError(t, err)
				_, err = store.Update(fmt.Sprintf("own-%d", id), func(cur int) int { return cur + 1 })
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	total, _ := store.Get("shared")
	assert.Equal(t, workers*perWorker, total)
	for i := 0; i < workers; i++ {
		own, _ := store.Get(fmt.Sprintf("own-%d", i))
		assert.Equal(t, perWorker, own)
	}
}

func TestDeleteFunc(t *testing.T) {
	store, err := Open[string](filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	require.NoError(t, store.Put("/files/ab3d.png/cat.png", "x"))
	require.NoError(t, store.Put("/files/ffff.mp4/clip.mp4", "y"))

	err = store.DeleteFunc(func(key string) bool {
		return filepath.Dir(key) == "/files/ab3d.png"
	})
	require.NoError(t, err)

	_, ok := store.Get("/files/ab3d.png/cat.png")
	assert.False(t, ok)
	_, ok = store.Get("/files/ffff.mp4/clip.mp4")
	assert.True(t, ok)
}

func TestRenameMovesValue(t *testing.T) {
	store, err := Open[int](filepath.Join(t.TempDir(), "counter.json"))
	require.NoError(t, err)
	require.NoError(t, store.Put("old.png", 7))

	require.NoError(t, store.Rename("old.png", "old.jpg"))

	_, ok := store.Get("old.png")
	assert.False(t, ok)
	val, ok := store.Get("old.jpg")
	assert.True(t, ok)
	assert.Equal(t, 7, val)

	// renaming an absent key is a no-op
	require.NoError(t, store.Rename("ghost", "somewhere"))
}
