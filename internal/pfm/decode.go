package pfm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/texview/texview/internal/resource"
)

// Load reads a PFM file into a new image resource.
//
//nolint:gosec // G304: path comes from the caller by design.
func Load(path string) (*resource.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer func() {
		_ = f.Close() // Ignore close error on read-only file.
	}()

	img := &resource.Image{}
	if _, err := Decode(f, img); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// ParseHeaderFile reads only the header of a PFM file.
//
//nolint:gosec // G304: path comes from the caller by design.
func ParseHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ReadHeader(asReader(f))
}

// Decode reads a complete PFM image from r into sink. The sink receives one
// SetPixelFormat call followed by one AllocateBuffer call, and the buffer is
// fully written before Decode returns without error.
//
// If the pixel data fails after AllocateBuffer, sinks implementing
// resource.Resetter are reset; any other sink is left holding a partially
// written buffer and must be discarded by the caller.
func Decode(r io.Reader, sink resource.Sink) (Header, error) {
	return decode(asReader(r), sink, HostLittleEndian())
}

func decode(r Reader, sink resource.Sink, hostLittleEndian bool) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, err
	}

	channels := h.Bands.Channels()
	if _, err := resource.BufferSize(h.Width, h.Height, channels*SampleSize); err != nil {
		return Header{}, formatErrorf("dimensions", "%dx%d is too large", h.Width, h.Height)
	}

	if err := sink.SetPixelFormat(channels, resource.Float32); err != nil {
		return Header{}, fmt.Errorf("set pixel format: %w", err)
	}
	buf, err := sink.AllocateBuffer(h.Width, h.Height, channels*SampleSize)
	if err != nil {
		return Header{}, fmt.Errorf("allocate buffer: %w", err)
	}

	if err := decodePixels(r, h, NeedSwap(h.Scale, hostLittleEndian), buf); err != nil {
		if rs, ok := sink.(resource.Resetter); ok {
			rs.Reset()
		}
		return Header{}, err
	}
	return h, nil
}

// decodePixels fills dst with the pixel rows that follow the header. File
// rows run bottom to top, so file row i lands in destination row height-i-1.
// Within a row the file layout already matches the destination layout: one
// sample per pixel for grayscale, interleaved r, g, b triples for color.
func decodePixels(r io.Reader, h Header, needSwap bool, dst []byte) error {
	rowSize := h.RowSize()
	if len(dst) != rowSize*h.Height {
		return fmt.Errorf("pfm: destination holds %d bytes, image needs %d", len(dst), rowSize*h.Height)
	}

	for i := 0; i < h.Height; i++ {
		start := (h.Height - i - 1) * rowSize
		row := dst[start : start+rowSize]
		if _, err := io.ReadFull(r, row); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: file row %d of %d", ErrTruncatedData, i, h.Height)
			}
			return fmt.Errorf("read row %d: %w", i, err)
		}
		if needSwap {
			swapSamples(row)
		}
	}
	return nil
}
