// Package preview renders float images into 16-bit TIFF previews.
package preview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/tiff"

	"github.com/texview/texview/internal/parallel"
	"github.com/texview/texview/internal/resource"
)

// ErrUnsupported is returned for images the preview cannot render.
var ErrUnsupported = errors.New("preview: unsupported image")

// Options configures tone mapping.
type Options struct {
	Exposure float32 // Stops; each sample is multiplied by 2^Exposure
	Gamma    float32 // Display gamma; 0 means 2.2
	Parallel parallel.Config
}

// Render tone maps the base level of img into a 16-bit image. Grayscale
// input yields *image.Gray16, three or four channels yield *image.RGBA64
// (alpha forced opaque for RGB).
func Render(img *resource.Image, opts Options) (image.Image, error) {
	vals, err := img.Float32s()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	w, h, ch := img.Width(), img.Height(), img.Format.Channels

	scale := math32.Exp2(opts.Exposure)
	invGamma := float32(1 / 2.2)
	if opts.Gamma > 0 {
		invGamma = 1 / opts.Gamma
	}
	tone := func(v float32) uint16 {
		return toUnorm16(v, scale, invGamma)
	}

	switch ch {
	case 1:
		out := image.NewGray16(image.Rect(0, 0, w, h))
		parallel.For(h, func(y int) {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				putUint16(row[x*2:], tone(vals[y*w+x]))
			}
		}, opts.Parallel)
		return out, nil

	case 3, 4:
		out := image.NewRGBA64(image.Rect(0, 0, w, h))
		parallel.For(h, func(y int) {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				src := vals[(y*w+x)*ch:]
				dst := row[x*8:]
				putUint16(dst[0:], tone(src[0]))
				putUint16(dst[2:], tone(src[1]))
				putUint16(dst[4:], tone(src[2]))
				alpha := uint16(0xFFFF)
				if ch == 4 {
					alpha = toUnorm16(src[3], 1, 1)
				}
				putUint16(dst[6:], alpha)
			}
		}, opts.Parallel)
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupported, ch)
	}
}

// WriteTIFF renders img and encodes it as a deflate-compressed TIFF.
func WriteTIFF(w io.Writer, img *resource.Image, opts Options) error {
	m, err := Render(img, opts)
	if err != nil {
		return err
	}
	if err := tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("preview: encode tiff: %w", err)
	}
	return nil
}

// WriteTIFFFile renders img into a TIFF file at path.
func WriteTIFFFile(path string, img *resource.Image, opts Options) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the caller by design.
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteTIFF(f, img, opts)
}

// toUnorm16 maps a linear sample to [0, 65535]. NaN maps to 0.
func toUnorm16(v, scale, invGamma float32) uint16 {
	if math32.IsNaN(v) {
		return 0
	}
	v *= scale
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xFFFF
	}
	return uint16(math32.Pow(v, invGamma)*65535 + 0.5)
}

// putUint16 stores v big-endian, the layout of image.Gray16 and image.RGBA64.
func putUint16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}
