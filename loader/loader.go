// Package loader opens floating point texture files.
//
// This package wraps the internal format readers and exports a single entry
// point that detects the file format (PFM or KTX2) from the extension or,
// failing that, from the leading bytes of the file.
//
// Example usage:
//
//	import "github.com/texview/texview/loader"
//
//	img, format, err := loader.Open("path/to/sky.pfm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s %dx%d\n", format, img.Width(), img.Height())
package loader

import (
	"github.com/texview/texview/internal/loader"
	"github.com/texview/texview/internal/resource"
)

// ImageFormat represents an image file format.
type ImageFormat = loader.ImageFormat

// Supported image formats.
const (
	FormatUnknown ImageFormat = loader.FormatUnknown
	FormatPFM     ImageFormat = loader.FormatPFM
	FormatKTX2    ImageFormat = loader.FormatKTX2
)

// ErrUnknownFormat is returned for files that are neither PFM nor KTX2.
var ErrUnknownFormat = loader.ErrUnknownFormat

// Open loads the image at path and reports which format it was read as.
//
// Supported formats:
//   - .pfm (Portable Float Map, grayscale or RGB)
//   - .ktx2 (Khronos texture container, float formats, optional zstd)
func Open(path string) (*resource.Image, ImageFormat, error) {
	return loader.Open(path)
}

// DetectFormat identifies the format of the file at path without decoding it.
func DetectFormat(path string) (ImageFormat, error) {
	return loader.DetectFormat(path)
}

// ParseFormat maps a format name such as "pfm" or ".ktx2" to an ImageFormat.
func ParseFormat(name string) (ImageFormat, error) {
	return loader.ParseFormat(name)
}
