package resource

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sink receives decoded pixels. Decoders set the pixel format first and then
// request a single buffer which they fill completely.
type Sink interface {
	SetPixelFormat(channels int, precision Precision) error
	AllocateBuffer(width, height, bytesPerPixel int) ([]byte, error)
}

// Mipmap is one level of detail. Bytes are tightly packed rows, top row first,
// in host byte order.
type Mipmap struct {
	Width  int
	Height int
	Bytes  []byte
}

// Face is one cube face (or the only face of a 2D texture).
type Face struct {
	Mipmaps []Mipmap
}

// Layer is one array layer.
type Layer struct {
	Faces []Face
}

// Image is an in-memory texture resource.
type Image struct {
	Format Format
	Layers []Layer

	formatSet bool
}

// Resetter is implemented by sinks that can drop a partially written buffer.
type Resetter interface {
	Reset()
}

// Compile-time checks.
var (
	_ Sink     = (*Image)(nil)
	_ Resetter = (*Image)(nil)
)

// New returns an empty image with the given format already set.
func New(format Format) *Image {
	return &Image{Format: format, formatSet: true}
}

// SetPixelFormat implements Sink.
func (img *Image) SetPixelFormat(channels int, precision Precision) error {
	f, err := NewFormat(channels, precision)
	if err != nil {
		return err
	}
	img.Format = f
	img.formatSet = true
	return nil
}

// AllocateBuffer implements Sink. It replaces any existing levels with a
// single layer, face and mipmap of the requested size.
func (img *Image) AllocateBuffer(width, height, bytesPerPixel int) ([]byte, error) {
	if !img.formatSet {
		return nil, ErrFormatNotSet
	}
	if bytesPerPixel != img.Format.BytesPerPixel() {
		return nil, fmt.Errorf("%w: %d bytes per pixel, format has %d",
			ErrUnsupportedFormat, bytesPerPixel, img.Format.BytesPerPixel())
	}
	size, err := BufferSize(width, height, bytesPerPixel)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	img.Layers = []Layer{{Faces: []Face{{Mipmaps: []Mipmap{{
		Width:  width,
		Height: height,
		Bytes:  buf,
	}}}}}}
	return buf, nil
}

// Reset drops every level. The pixel format is kept.
func (img *Image) Reset() {
	img.Layers = nil
}

// BufferSize returns width*height*bytesPerPixel, rejecting non-positive
// values and products that overflow int.
func BufferSize(width, height, bytesPerPixel int) (int, error) {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return 0, fmt.Errorf("%w: %dx%d, %d bytes per pixel", ErrInvalidDimensions, width, height, bytesPerPixel)
	}
	if width > math.MaxInt/height || width*height > math.MaxInt/bytesPerPixel {
		return 0, fmt.Errorf("%w: %dx%d overflows buffer size", ErrInvalidDimensions, width, height)
	}
	return width * height * bytesPerPixel, nil
}

// Base returns the first mipmap of the first face of the first layer, or nil.
func (img *Image) Base() *Mipmap {
	if len(img.Layers) == 0 || len(img.Layers[0].Faces) == 0 || len(img.Layers[0].Faces[0].Mipmaps) == 0 {
		return nil
	}
	return &img.Layers[0].Faces[0].Mipmaps[0]
}

// Width returns the base level width.
func (img *Image) Width() int {
	if m := img.Base(); m != nil {
		return m.Width
	}
	return 0
}

// Height returns the base level height.
func (img *Image) Height() int {
	if m := img.Base(); m != nil {
		return m.Height
	}
	return 0
}

// Float32s decodes the base level into a new slice of float32 values.
func (img *Image) Float32s() ([]float32, error) {
	m := img.Base()
	if m == nil {
		return nil, fmt.Errorf("%w: no mipmap", ErrInvalidDimensions)
	}
	if img.Format.Precision != Float32 {
		return nil, fmt.Errorf("%w: %s is not float32", ErrUnsupportedFormat, img.Format.Precision)
	}
	out := make([]float32, len(m.Bytes)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.NativeEndian.Uint32(m.Bytes[i*4:]))
	}
	return out, nil
}

// ExpandRGBToRGBA returns a copy of a three channel float32 image with an
// alpha channel set to alpha. Every layer, face and level is converted.
func (img *Image) ExpandRGBToRGBA(alpha float32) (*Image, error) {
	if img.Format.Channels != 3 || img.Format.Precision != Float32 {
		return nil, fmt.Errorf("%w: expected 3 float32 channels, got %d %s",
			ErrUnsupportedFormat, img.Format.Channels, img.Format.Precision)
	}
	format, err := NewFormat(4, Float32)
	if err != nil {
		return nil, err
	}
	format.IsSRGB = img.Format.IsSRGB

	var a [4]byte
	binary.NativeEndian.PutUint32(a[:], math.Float32bits(alpha))

	out := &Image{Format: format, formatSet: true, Layers: make([]Layer, len(img.Layers))}
	for li, layer := range img.Layers {
		out.Layers[li].Faces = make([]Face, len(layer.Faces))
		for fi, face := range layer.Faces {
			mips := make([]Mipmap, len(face.Mipmaps))
			for mi, m := range face.Mipmaps {
				pixels := len(m.Bytes) / 12
				dst := make([]byte, pixels*16)
				for p := 0; p < pixels; p++ {
					copy(dst[p*16:p*16+12], m.Bytes[p*12:p*12+12])
					copy(dst[p*16+12:p*16+16], a[:])
				}
				mips[mi] = Mipmap{Width: m.Width, Height: m.Height, Bytes: dst}
			}
			out.Layers[li].Faces[fi].Mipmaps = mips
		}
	}
	return out, nil
}
