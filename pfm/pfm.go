// Copyright 2025 The texview Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pfm loads and saves Portable Float Map images.
//
// PFM stores 1-band ("Pf") or 3-band ("PF") float32 images with a short
// text header. The sign of the header's scale factor selects the sample byte
// order; rows are stored bottom to top. Load returns an image resource whose
// pixels are top row first in host byte order, ready for upload as an R32F or
// RGB32F texture.
//
// Example:
//
//	import "github.com/texview/texview/pfm"
//
//	img, err := pfm.Load("memorial.pfm")
//	if err != nil {
//	    if errors.Is(err, pfm.ErrTruncatedData) {
//	        log.Fatal("file is incomplete")
//	    }
//	    log.Fatal(err)
//	}
//	fmt.Println(img.Width(), img.Height())
package pfm

import (
	"io"

	"github.com/texview/texview/internal/pfm"
	"github.com/texview/texview/internal/resource"
)

// Header is the parsed PFM header.
type Header = pfm.Header

// BandKind is the number of channels stored per pixel.
type BandKind = pfm.BandKind

// Band layouts.
const (
	Grayscale = pfm.Grayscale
	Color     = pfm.Color
)

// FormatError describes a header violation. It matches ErrInvalidFormat.
type FormatError = pfm.FormatError

// EncodeOptions configures Encode.
type EncodeOptions = pfm.EncodeOptions

// Image is the in-memory texture resource produced by Load.
type Image = resource.Image

// Sink receives decoded pixels; *Image implements it.
type Sink = resource.Sink

// Error kinds returned by Load and Decode.
var (
	ErrFileOpen      = pfm.ErrFileOpen
	ErrInvalidFormat = pfm.ErrInvalidFormat
	ErrTruncatedData = pfm.ErrTruncatedData
)

// Load reads the PFM file at path into a new image resource.
//
// Every failure is fatal: on error the returned image is nil.
func Load(path string) (*Image, error) {
	return pfm.Load(path)
}

// Decode reads a PFM image from r into sink and returns its header.
func Decode(r io.Reader, sink Sink) (Header, error) {
	return pfm.Decode(r, sink)
}

// ReadHeader parses only the header of the PFM file at path.
func ReadHeader(path string) (Header, error) {
	return pfm.ParseHeaderFile(path)
}

// Encode writes the base level of img as PFM.
func Encode(w io.Writer, img *Image, opts EncodeOptions) error {
	return pfm.Encode(w, img, opts)
}

// NeedSwap reports whether samples stored with the byte order encoded by
// scale must be byte-swapped on a host with the given byte order.
func NeedSwap(scale float32, hostLittleEndian bool) bool {
	return pfm.NeedSwap(scale, hostLittleEndian)
}
