// Package resource holds decoded images in the layer/face/mipmap layout
// expected by texture upload paths (OpenGL, WebGPU, KTX2).
package resource

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Common errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrFormatNotSet      = errors.New("pixel format not set")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// Precision is the storage type of a single channel.
type Precision int

// Supported channel precisions.
const (
	Float32 Precision = iota
	Float16
)

// Size returns the byte size of one channel value.
func (p Precision) Size() int {
	switch p {
	case Float32:
		return 4
	case Float16:
		return 2
	default:
		return 0
	}
}

// String returns a human-readable name for the precision.
func (p Precision) String() string {
	switch p {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// OpenGL enums used by the format table.
const (
	GLRed       uint32 = 0x1903
	GLRG        uint32 = 0x8227
	GLRGB       uint32 = 0x1907
	GLRGBA      uint32 = 0x1908
	GLR32F      uint32 = 0x822E
	GLRG32F     uint32 = 0x8230
	GLRGB32F    uint32 = 0x8815
	GLRGBA32F   uint32 = 0x8814
	GLR16F      uint32 = 0x822D
	GLRG16F     uint32 = 0x822F
	GLRGB16F    uint32 = 0x881B
	GLRGBA16F   uint32 = 0x881A
	GLFloat     uint32 = 0x1406
	GLHalfFloat uint32 = 0x140B
)

// Vulkan format codes, as stored in the vkFormat field of KTX2 files.
const (
	VkFormatUndefined          uint32 = 0
	VkFormatR16SFloat          uint32 = 76
	VkFormatR16G16SFloat       uint32 = 83
	VkFormatR16G16B16SFloat    uint32 = 90
	VkFormatR16G16B16A16SFloat uint32 = 97
	VkFormatR32SFloat          uint32 = 100
	VkFormatR32G32SFloat       uint32 = 103
	VkFormatR32G32B32SFloat    uint32 = 106
	VkFormatR32G32B32A32SFloat uint32 = 109
)

// formatEntry is one row of the format table.
type formatEntry struct {
	channels   int
	precision  Precision
	glInternal uint32
	glExternal uint32
	glType     uint32
	vkFormat   uint32
	texture    gputypes.TextureFormat // zero when WebGPU has no matching format
}

var formatTable = []formatEntry{
	{1, Float32, GLR32F, GLRed, GLFloat, VkFormatR32SFloat, gputypes.TextureFormatR32Float},
	{2, Float32, GLRG32F, GLRG, GLFloat, VkFormatR32G32SFloat, gputypes.TextureFormatRG32Float},
	{3, Float32, GLRGB32F, GLRGB, GLFloat, VkFormatR32G32B32SFloat, gputypes.TextureFormatUndefined},
	{4, Float32, GLRGBA32F, GLRGBA, GLFloat, VkFormatR32G32B32A32SFloat, gputypes.TextureFormatRGBA32Float},
	{1, Float16, GLR16F, GLRed, GLHalfFloat, VkFormatR16SFloat, gputypes.TextureFormatR16Float},
	{2, Float16, GLRG16F, GLRG, GLHalfFloat, VkFormatR16G16SFloat, gputypes.TextureFormatRG16Float},
	{3, Float16, GLRGB16F, GLRGB, GLHalfFloat, VkFormatR16G16B16SFloat, gputypes.TextureFormatUndefined},
	{4, Float16, GLRGBA16F, GLRGBA, GLHalfFloat, VkFormatR16G16B16A16SFloat, gputypes.TextureFormatRGBA16Float},
}

// Format describes how the bytes of an image are laid out and how they map
// onto graphics API formats.
type Format struct {
	Channels     int
	Precision    Precision
	IsCompressed bool
	IsSRGB       bool

	GLInternalFormat uint32
	GLExternalFormat uint32
	GLType           uint32
}

// NewFormat returns the uncompressed linear format for the given channel
// count and precision.
func NewFormat(channels int, precision Precision) (Format, error) {
	e, ok := lookup(channels, precision)
	if !ok {
		return Format{}, fmt.Errorf("%w: %d channels of %s", ErrUnsupportedFormat, channels, precision)
	}
	return Format{
		Channels:         e.channels,
		Precision:        e.precision,
		GLInternalFormat: e.glInternal,
		GLExternalFormat: e.glExternal,
		GLType:           e.glType,
	}, nil
}

// FormatFromVk returns the format for a Vulkan format code.
func FormatFromVk(vkFormat uint32) (Format, error) {
	for _, e := range formatTable {
		if e.vkFormat == vkFormat {
			return NewFormat(e.channels, e.precision)
		}
	}
	return Format{}, fmt.Errorf("%w: vkFormat %d", ErrUnsupportedFormat, vkFormat)
}

// BytesPerPixel returns the size of one pixel in bytes.
func (f Format) BytesPerPixel() int {
	return f.Channels * f.Precision.Size()
}

// VkFormat returns the Vulkan format code, or VkFormatUndefined.
func (f Format) VkFormat() uint32 {
	if e, ok := lookup(f.Channels, f.Precision); ok {
		return e.vkFormat
	}
	return VkFormatUndefined
}

// TextureFormat returns the WebGPU texture format. The second result is false
// for layouts WebGPU cannot sample directly (three channels).
func (f Format) TextureFormat() (gputypes.TextureFormat, bool) {
	e, ok := lookup(f.Channels, f.Precision)
	if !ok || e.texture == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatUndefined, false
	}
	return e.texture, true
}

func lookup(channels int, precision Precision) (formatEntry, bool) {
	for _, e := range formatTable {
		if e.channels == channels && e.precision == precision {
			return e, true
		}
	}
	return formatEntry{}, false
}
