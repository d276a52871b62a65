// Package gpu prepares decoded images for WebGPU texture upload.
//
// Planning is pure Go and runs everywhere. The Uploader that talks to a real
// device uses go-webgpu (github.com/go-webgpu/webgpu) and is only available
// on Windows; elsewhere NewUploader returns ErrNoDevice.
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/texview/texview/internal/resource"
)

// CopyBytesPerRowAlignment is the WebGPU row pitch alignment for
// buffer-to-texture copies.
const CopyBytesPerRowAlignment = 256

// Upload errors.
var (
	ErrNotUploadable = errors.New("gpu: image cannot be uploaded")
	ErrNoDevice      = errors.New("gpu: WebGPU device not available on this platform")
)

// Plan describes one texture upload: the target format and a staging copy
// of the base level with rows padded to CopyBytesPerRowAlignment.
type Plan struct {
	Format       gputypes.TextureFormat
	Usage        gputypes.TextureUsage
	Width        uint32
	Height       uint32
	BytesPerRow  uint32
	RowsPerImage uint32
	Expanded     bool // RGB data was widened to RGBA
	Data         []byte
}

// NewPlan builds an upload plan for the base level of img. Three channel
// images are expanded to RGBA with alpha 1 since WebGPU has no RGB float
// format.
func NewPlan(img *resource.Image) (*Plan, error) {
	src := img
	expanded := false
	if img.Format.Channels == 3 {
		var err error
		if src, err = img.ExpandRGBToRGBA(1); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotUploadable, err)
		}
		expanded = true
	}

	format, ok := src.Format.TextureFormat()
	if !ok {
		return nil, fmt.Errorf("%w: %d channels of %s", ErrNotUploadable, src.Format.Channels, src.Format.Precision)
	}
	base := src.Base()
	if base == nil {
		return nil, fmt.Errorf("%w: no pixels", ErrNotUploadable)
	}

	rowSize := base.Width * src.Format.BytesPerPixel()
	pitch := alignRow(rowSize)
	data := base.Bytes
	if pitch != rowSize {
		data = make([]byte, pitch*base.Height)
		for y := 0; y < base.Height; y++ {
			copy(data[y*pitch:], base.Bytes[y*rowSize:(y+1)*rowSize])
		}
	}

	return &Plan{
		Format:       format,
		Usage:        gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		Width:        uint32(base.Width),  //nolint:gosec // G115: image dimensions are positive
		Height:       uint32(base.Height), //nolint:gosec // G115: image dimensions are positive
		BytesPerRow:  uint32(pitch),       //nolint:gosec // G115: bounded by image size
		RowsPerImage: uint32(base.Height), //nolint:gosec // G115: image dimensions are positive
		Expanded:     expanded,
		Data:         data,
	}, nil
}

// Size returns the staging buffer size in bytes.
func (p *Plan) Size() uint64 {
	return uint64(len(p.Data))
}

func alignRow(n int) int {
	return (n + CopyBytesPerRowAlignment - 1) / CopyBytesPerRowAlignment * CopyBytesPerRowAlignment
}
