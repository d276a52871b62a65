package pfm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/texview/texview/internal/resource"
)

// EncodeOptions configures Encode.
type EncodeOptions struct {
	ByteOrder binary.ByteOrder // Sample byte order; nil means little-endian
	Scale     float32          // Scale magnitude written to the header; 0 means 1
}

// Encode writes the base level of img as PFM. The image must hold one or
// three float32 channels.
func Encode(w io.Writer, img *resource.Image, opts EncodeOptions) error {
	m := img.Base()
	if m == nil {
		return fmt.Errorf("pfm: encode: image has no pixels")
	}
	if img.Format.Precision != resource.Float32 {
		return fmt.Errorf("pfm: encode: %w: %s samples", resource.ErrUnsupportedFormat, img.Format.Precision)
	}

	var bands BandKind
	switch img.Format.Channels {
	case 1:
		bands = Grayscale
	case 3:
		bands = Color
	default:
		return fmt.Errorf("pfm: encode: %w: %d channels", resource.ErrUnsupportedFormat, img.Format.Channels)
	}

	h := Header{Bands: bands, Width: m.Width, Height: m.Height, Scale: headerScale(opts)}
	if len(m.Bytes) != h.RowSize()*h.Height {
		return fmt.Errorf("pfm: encode: mipmap holds %d bytes, expected %d", len(m.Bytes), h.RowSize()*h.Height)
	}

	bw := bufio.NewWriter(w)
	if err := WriteHeader(bw, h); err != nil {
		return err
	}

	order := opts.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	row := make([]byte, h.RowSize())
	for y := h.Height - 1; y >= 0; y-- {
		src := m.Bytes[y*len(row) : (y+1)*len(row)]
		for i := 0; i < len(row); i += SampleSize {
			order.PutUint32(row[i:], binary.NativeEndian.Uint32(src[i:]))
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("pfm: write row %d: %w", y, err)
		}
	}
	return bw.Flush()
}

// EncodeFile writes img to path as PFM.
func EncodeFile(path string, img *resource.Image, opts EncodeOptions) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the caller by design.
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, opts)
}

// WriteHeader writes the text header for h, including the line terminator.
func WriteHeader(w io.Writer, h Header) error {
	scale := strconv.FormatFloat(float64(h.Scale), 'f', -1, 32)
	if !strings.ContainsAny(scale, ".eE") {
		scale += ".0"
	}
	if _, err := fmt.Fprintf(w, "%s\n%d %d\n%s\n", h.Bands.Magic(), h.Width, h.Height, scale); err != nil {
		return fmt.Errorf("pfm: write header: %w", err)
	}
	return nil
}

func headerScale(opts EncodeOptions) float32 {
	scale := float32(math.Abs(float64(opts.Scale)))
	if scale == 0 {
		scale = 1
	}
	if opts.ByteOrder == nil || opts.ByteOrder.Uint16([]byte{1, 0}) == 1 {
		return -scale
	}
	return scale
}
