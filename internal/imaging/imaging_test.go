package imaging_test

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painterly-ml/painterly/internal/backend/cpu"
	"github.com/painterly-ml/painterly/internal/imaging"
	"github.com/painterly-ml/painterly/internal/tensor"
)

func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 255) / max(w-1, 1)),
				G: uint8((y * 255) / max(h-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func TestPreprocess_ShapeAndMeans(t *testing.T) {
	backend := cpu.New()

	// A uniform gray image: every pixel (100, 100, 100).
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}

	tens := imaging.Preprocess(img, backend)
	require.True(t, tens.Shape().Equal(tensor.Shape{1, 3, 3, 4}), "got %v", tens.Shape())

	// Channel order is BGR with the ImageNet means removed.
	assert.InDelta(t, 100-103.939, tens.At(0, 0, 0, 0), 1e-3)
	assert.InDelta(t, 100-116.779, tens.At(0, 1, 0, 0), 1e-3)
	assert.InDelta(t, 100-123.68, tens.At(0, 2, 0, 0), 1e-3)
}

func TestPreprocessDeprocess_RoundTrip(t *testing.T) {
	backend := cpu.New()
	src := gradientImage(8, 6)

	tens := imaging.Preprocess(src, backend)
	back, err := imaging.Deprocess(tens.Raw())
	require.NoError(t, err)

	bounds := back.Bounds()
	require.Equal(t, 8, bounds.Dx())
	require.Equal(t, 6, bounds.Dy())

	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			wr, wg, wb, _ := src.At(x, y).RGBA()
			gr, gg, gb, _ := back.At(x, y).RGBA()
			assert.InDelta(t, wr>>8, gr>>8, 1, "R at (%d,%d)", x, y)
			assert.InDelta(t, wg>>8, gg>>8, 1, "G at (%d,%d)", x, y)
			assert.InDelta(t, wb>>8, gb>>8, 1, "B at (%d,%d)", x, y)
		}
	}
}

func TestDeprocess_Clips(t *testing.T) {
	raw := tensor.MustNewRaw(tensor.Shape{1, 3, 1, 1})
	raw.Data()[0] = 1e6
	raw.Data()[1] = -1e6
	raw.Data()[2] = 0

	img, err := imaging.Deprocess(raw)
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(123), r>>8) // 0 + 123.68, truncated
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(255), b>>8)
}

func TestDeprocess_RejectsBadShape(t *testing.T) {
	raw := tensor.MustNewRaw(tensor.Shape{3, 2, 2})
	_, err := imaging.Deprocess(raw)
	assert.Error(t, err)
}

func TestResize(t *testing.T) {
	src := gradientImage(10, 8)

	resized := imaging.Resize(src, 5, 4)
	assert.Equal(t, 5, resized.Bounds().Dx())
	assert.Equal(t, 4, resized.Bounds().Dy())

	// Same size passes through untouched.
	same := imaging.Resize(src, 10, 8)
	assert.Equal(t, src, same)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := gradientImage(6, 6)

	path := filepath.Join(dir, "out.png")
	require.NoError(t, imaging.Save(path, src))

	loaded, err := imaging.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Bounds().Dx())
	assert.Equal(t, 6, loaded.Bounds().Dy())
}

func TestSave_UnsupportedExtension(t *testing.T) {
	err := imaging.Save(filepath.Join(t.TempDir(), "out.bmp"), gradientImage(2, 2))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := imaging.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, imaging.ErrResourceUnavailable)
}
