package pfm

import "fmt"

// Magic tokens.
const (
	MagicGrayscale = "Pf"
	MagicColor     = "PF"
)

// SampleSize is the size in bytes of one stored sample.
const SampleSize = 4

// maxTokenLen bounds numeric header tokens so a corrupt header cannot make
// the tokenizer read the whole file.
const maxTokenLen = 64

// BandKind is the number of channels stored per pixel.
type BandKind int

// Supported band layouts.
const (
	Grayscale BandKind = 1
	Color     BandKind = 3
)

// Channels returns the number of float samples per pixel.
func (b BandKind) Channels() int {
	return int(b)
}

// Magic returns the header token for the band layout.
func (b BandKind) Magic() string {
	if b == Color {
		return MagicColor
	}
	return MagicGrayscale
}

// String returns a human-readable name for the band layout.
func (b BandKind) String() string {
	switch b {
	case Grayscale:
		return "grayscale"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("unknown(%d)", int(b))
	}
}

// Header is the parsed PFM header.
type Header struct {
	Bands  BandKind
	Width  int
	Height int
	Scale  float32 // Sign encodes byte order; magnitude unused
}

// LittleEndian reports whether the samples are stored little-endian.
func (h Header) LittleEndian() bool {
	return h.Scale < 0
}

// RowSize returns the size in bytes of one row of samples.
func (h Header) RowSize() int {
	return h.Width * h.Bands.Channels() * SampleSize
}
