package gpu

import (
	"testing"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		want     wgpu.TextureFormat
	}{
		{"grayscale", 1, wgpu.TextureFormatR32Float},
		{"rgb expanded", 3, wgpu.TextureFormatRGBA32Float},
		{"rgba", 4, wgpu.TextureFormatRGBA32Float},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(newImage(t, tt.channels, 5, 3))
			require.NoError(t, err)

			desc, err := p.textureDescriptor()
			require.NoError(t, err)
			assert.Equal(t, tt.want, desc.Format)
			assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, desc.Usage)
			assert.Equal(t, wgpu.TextureDimension2D, desc.Dimension)
			assert.Equal(t, wgpu.Extent3D{Width: 5, Height: 3, DepthOrArrayLayers: 1}, desc.Size)
			assert.Equal(t, uint32(1), desc.MipLevelCount)
			assert.Equal(t, uint32(1), desc.SampleCount)

			layout := p.bufferLayout()
			assert.Equal(t, uint32(CopyBytesPerRowAlignment), layout.BytesPerRow)
			assert.Equal(t, uint32(3), layout.RowsPerImage)
			assert.Equal(t, uint64(layout.BytesPerRow)*uint64(layout.RowsPerImage), p.Size())
		})
	}
}

func TestTextureDescriptor_Rejects(t *testing.T) {
	p, err := NewPlan(newImage(t, 1, 2, 2))
	require.NoError(t, err)

	noFormat := *p
	noFormat.Format = gputypes.TextureFormatRG32Float
	_, err = noFormat.textureDescriptor()
	assert.ErrorIs(t, err, ErrNotUploadable)

	noCopy := *p
	noCopy.Usage = gputypes.TextureUsageTextureBinding
	_, err = noCopy.textureDescriptor()
	assert.ErrorIs(t, err, ErrNotUploadable)

	_, err = (&Plan{Format: p.Format, Usage: p.Usage}).textureDescriptor()
	assert.ErrorIs(t, err, ErrNotUploadable)
}

func TestNativeUsage(t *testing.T) {
	assert.Equal(t, wgpu.TextureUsageNone, nativeUsage(gputypes.TextureUsageNone))
	assert.Equal(t, wgpu.TextureUsageCopySrc|wgpu.TextureUsageRenderAttachment,
		nativeUsage(gputypes.TextureUsageCopySrc|gputypes.TextureUsageRenderAttachment))
}
