package gpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// nativeFormats maps the portable format enum onto webgpu.h values.
var nativeFormats = map[gputypes.TextureFormat]wgpu.TextureFormat{
	gputypes.TextureFormatR16Float:    wgpu.TextureFormatR16Float,
	gputypes.TextureFormatRG16Float:   wgpu.TextureFormatRG16Float,
	gputypes.TextureFormatRGBA16Float: wgpu.TextureFormatRGBA16Float,
	gputypes.TextureFormatR32Float:    wgpu.TextureFormatR32Float,
	gputypes.TextureFormatRGBA32Float: wgpu.TextureFormatRGBA32Float,
}

var nativeUsages = []struct {
	portable gputypes.TextureUsage
	native   wgpu.TextureUsage
}{
	{gputypes.TextureUsageCopySrc, wgpu.TextureUsageCopySrc},
	{gputypes.TextureUsageCopyDst, wgpu.TextureUsageCopyDst},
	{gputypes.TextureUsageTextureBinding, wgpu.TextureUsageTextureBinding},
	{gputypes.TextureUsageStorageBinding, wgpu.TextureUsageStorageBinding},
	{gputypes.TextureUsageRenderAttachment, wgpu.TextureUsageRenderAttachment},
}

func nativeUsage(u gputypes.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	for _, m := range nativeUsages {
		if u.Contains(m.portable) {
			out |= m.native
		}
	}
	return out
}

// textureDescriptor describes the 2D, single level texture the plan fills.
func (p *Plan) textureDescriptor() (*wgpu.TextureDescriptor, error) {
	format, ok := nativeFormats[p.Format]
	if !ok {
		return nil, fmt.Errorf("%w: texture format %v has no native equivalent", ErrNotUploadable, p.Format)
	}
	if !p.Usage.Contains(gputypes.TextureUsageCopyDst) {
		return nil, fmt.Errorf("%w: texture usage lacks CopyDst", ErrNotUploadable)
	}
	if p.Width == 0 || p.Height == 0 || p.Size() == 0 {
		return nil, fmt.Errorf("%w: empty plan", ErrNotUploadable)
	}
	return &wgpu.TextureDescriptor{
		Label:         wgpu.EmptyStringView(),
		Usage:         nativeUsage(p.Usage),
		Dimension:     wgpu.TextureDimension2D,
		Size:          p.extent(),
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	}, nil
}

func (p *Plan) extent() wgpu.Extent3D {
	return wgpu.Extent3D{Width: p.Width, Height: p.Height, DepthOrArrayLayers: 1}
}

// bufferLayout describes the staging rows as the source of the copy.
func (p *Plan) bufferLayout() wgpu.TexelCopyBufferLayout {
	return wgpu.TexelCopyBufferLayout{BytesPerRow: p.BytesPerRow, RowsPerImage: p.RowsPerImage}
}
