package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "/media", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func pngUpload(t *testing.T, name string, width, height int) Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return Upload{Filename: name, Reader: &buf}
}

func TestSaveWritesJPEG(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), pngUpload(t, "photo.png", 100, 60))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	saved, err := imaging.Open(filepath.Join(store.Dir(), path.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, 100, saved.Bounds().Dx())
	assert.Equal(t, 60, saved.Bounds().Dy())
}

func TestSaveDownscalesLargeImages(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), pngUpload(t, "huge.png", 2400, 1200))
	require.NoError(t, err)

	saved, err := imaging.Open(filepath.Join(store.Dir(), path.Base(url)))
	require.NoError(t, err)
	assert.LessOrEqual(t, saved.Bounds().Dx(), 1200)
	assert.LessOrEqual(t, saved.Bounds().Dy(), 1200)
}

func TestSaveRejectsNonImages(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save(context.Background(), Upload{
		Filename: "notes.txt",
		Reader:   strings.NewReader("definitely not pixels"),
	})
	assert.Error(t, err)
}

func TestSaveAllRollsBackOnFailure(t *testing.T) {
	store := newTestStore(t)

	urls, err := store.SaveAll(context.Background(), []Upload{
		pngUpload(t, "one.png", 10, 10),
		pngUpload(t, "two.png", 10, 10),
		{Filename: "broken.bin", Reader: strings.NewReader("garbage")},
	})
	require.Error(t, err)
	assert.Nil(t, urls)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "failed batch must leave no files behind")
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), pngUpload(t, "photo.png", 10, 10))
	require.NoError(t, err)
	require.NoError(t, store.Remove(context.Background(), url))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Removing twice is not an error.
	assert.NoError(t, store.Remove(context.Background(), url))
}
