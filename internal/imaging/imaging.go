// Package imaging converts between image files and the NCHW tensors the
// optimizer works on.
//
// Tensors use BGR channel order with the ImageNet channel means subtracted,
// the convention the trunk's weights were trained under. Deprocess inverts
// the transform and clips back into displayable range.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// ErrResourceUnavailable wraps failures to read or decode an input image.
var ErrResourceUnavailable = errors.New("imaging: resource unavailable")

// ImageNet channel means, BGR order.
var bgrMeans = [3]float32{103.939, 116.779, 123.68}

// Load reads and decodes an image file (PNG or JPEG).
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrResourceUnavailable, path, err)
	}
	return img, nil
}

// Save encodes an image to a file; the format is chosen by extension
// (.png, .jpg, .jpeg).
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Resize scales an image to the given dimensions with bilinear filtering.
// Returns the input unchanged when it already has the target size.
func Resize(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Preprocess converts an image into a [1, 3, H, W] tensor: channels reversed
// to BGR and the ImageNet means subtracted.
func Preprocess[B tensor.Backend](img image.Image, backend B) *tensor.Tensor[B] {
	bounds := img.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()

	t := tensor.Zeros(tensor.Shape{1, 3, h, w}, backend)
	data := t.Data()
	plane := h * w

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*w + x
			data[0*plane+idx] = float32(b>>8) - bgrMeans[0]
			data[1*plane+idx] = float32(g>>8) - bgrMeans[1]
			data[2*plane+idx] = float32(r>>8) - bgrMeans[2]
		}
	}
	return t
}

// Deprocess converts a [1, 3, H, W] BGR tensor back into an image, adding
// the channel means, clipping to [0, 255] and restoring RGB order.
func Deprocess(t *tensor.RawTensor) (image.Image, error) {
	shape := t.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[1] != 3 {
		return nil, fmt.Errorf("imaging: tensor must be [1, 3, H, W], got %v", shape)
	}
	h := shape[2]
	w := shape[3]
	plane := h * w
	data := t.Data()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			b := clipByte(data[0*plane+idx] + bgrMeans[0])
			g := clipByte(data[1*plane+idx] + bgrMeans[1])
			r := clipByte(data[2*plane+idx] + bgrMeans[2])
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img, nil
}

func clipByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
