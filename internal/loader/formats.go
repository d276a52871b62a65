package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/texview/texview/internal/ktx2"
	"github.com/texview/texview/internal/pfm"
	"github.com/texview/texview/internal/resource"
)

// ImageFormat represents an image file format.
type ImageFormat int

// Supported image formats.
const (
	FormatUnknown ImageFormat = iota
	FormatPFM
	FormatKTX2
)

// ErrUnknownFormat is returned when neither the extension nor the file
// contents identify a supported format.
var ErrUnknownFormat = errors.New("unsupported image format")

// String returns the format name.
func (f ImageFormat) String() string {
	switch f {
	case FormatPFM:
		return "PFM"
	case FormatKTX2:
		return "KTX2"
	default:
		return "Unknown"
	}
}

// Extension returns the canonical file extension, including the dot.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatPFM:
		return ".pfm"
	case FormatKTX2:
		return ".ktx2"
	default:
		return ""
	}
}

// ParseFormat maps a user supplied name ("pfm", ".ktx2", ...) to a format.
func ParseFormat(name string) (ImageFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "pfm":
		return FormatPFM, nil
	case "ktx2":
		return FormatKTX2, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Sniff identifies a format from the first bytes of a file.
func Sniff(head []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(head, ktx2.Identifier[:]):
		return FormatKTX2
	case bytes.HasPrefix(head, []byte(pfm.MagicGrayscale)), bytes.HasPrefix(head, []byte(pfm.MagicColor)):
		return FormatPFM
	default:
		return FormatUnknown
	}
}

// DetectFormat identifies the format of the file at path, first by extension
// and then by its leading bytes.
//
//nolint:gosec // G304: path comes from the caller by design.
func DetectFormat(path string) (ImageFormat, error) {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	head := make([]byte, len(ktx2.Identifier))
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("read %s: %w", path, err)
	}
	if f := Sniff(head[:n]); f != FormatUnknown {
		return f, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %s (expected .pfm or .ktx2)", ErrUnknownFormat, path)
}

// Open loads the image at path, auto-detecting the format.
func Open(path string) (*resource.Image, ImageFormat, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, FormatUnknown, err
	}

	switch format {
	case FormatPFM:
		img, err := pfm.Load(path)
		return img, format, err
	case FormatKTX2:
		tex, err := ktx2.ReadFile(path)
		if err != nil {
			return nil, format, err
		}
		img, err := tex.Image()
		return img, format, err
	default:
		return nil, FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
