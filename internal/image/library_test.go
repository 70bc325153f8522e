package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLibraryLoadCaches(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "logos", "g4_post.png"), 3, 2, color.NRGBA{1, 2, 3, 255})

	lib := NewLibrary(dir)
	a, err := lib.Load("logos/g4_post.png")
	require.NoError(t, err)
	assert.Equal(t, 3, a.Width())
	assert.Equal(t, 2, a.Height())
	assert.Equal(t, FormatPNG, a.Format)
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, a.PixelAt(2, 1))
	assert.Equal(t, color.NRGBA{}, a.PixelAt(3, 0))

	again, err := lib.Load("logos/g4_post.png")
	require.NoError(t, err)
	assert.Same(t, a, again)

	lib.Invalidate("logos/g4_post.png")
	fresh, err := lib.Load("logos/g4_post.png")
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
}

func TestLibraryLoadErrors(t *testing.T) {
	lib := NewLibrary(t.TempDir())

	_, err := lib.Load("")
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = lib.Load("missing.png")
	assert.Error(t, err)
}

func TestLibraryOptions(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "textures", "paper_old.png"), 1, 1, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "textures", "canvas.png"), 1, 1, color.NRGBA{A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "textures", "README.txt"), []byte("x"), 0o644))

	opts, err := NewLibrary(dir).Options("textures")
	require.NoError(t, err)
	assert.Equal(t, []Option{
		{Value: "textures/canvas.png", Label: "Canvas"},
		{Value: "textures/paper_old.png", Label: "Paper old"},
	}, opts)
}
