// Package ktx2 implements the subset of the Khronos KTX2 container needed to
// store uncompressed float textures: format-code translation, level storage
// and a reader/writer with optional Zstandard supercompression.
//
//	File Structure:
//	  [12 bytes: Identifier «KTX 20»\r\n\x1A\n]
//	  [68 bytes: Header and index (uint32/uint64 LE)]
//	  [24 bytes per level: Level index]
//	  [Data format descriptor]
//	  [Key/value data]
//	  [Level data, smallest level first]
//
// Specification: https://registry.khronos.org/KTX/specs/2.0/ktxspec.v2.html
package ktx2

import (
	"errors"
	"fmt"

	"github.com/texview/texview/internal/resource"
)

// Identifier is the 12-byte file signature.
var Identifier = [12]byte{0xAB, 'K', 'T', 'X', ' ', '2', '0', 0xBB, '\r', '\n', 0x1A, '\n'}

// Supercompression schemes.
const (
	SupercompressionNone uint32 = 0
	SupercompressionZstd uint32 = 2
)

// Writer identification stored under the KTXwriter key.
const writerName = "texview ktx2"

const (
	headerSize     = 80 // identifier + header + index
	levelIndexSize = 24
)

// Common errors.
var (
	ErrInvalidIdentifier = errors.New("ktx2: invalid file identifier")
	ErrUnsupported       = errors.New("ktx2: unsupported texture")
	ErrLevelSize         = errors.New("ktx2: level data has wrong size")
	ErrOutOfRange        = errors.New("ktx2: out of range")
	ErrMissingLevel      = errors.New("ktx2: level not stored")
)

// fileHeader is the fixed part that follows the identifier.
type fileHeader struct {
	VkFormat               uint32
	TypeSize               uint32
	PixelWidth             uint32
	PixelHeight            uint32
	PixelDepth             uint32
	LayerCount             uint32
	FaceCount              uint32
	LevelCount             uint32
	SupercompressionScheme uint32

	DFDByteOffset uint32
	DFDByteLength uint32
	KVDByteOffset uint32
	KVDByteLength uint32
	SGDByteOffset uint64
	SGDByteLength uint64
}

type levelIndex struct {
	ByteOffset             uint64
	ByteLength             uint64
	UncompressedByteLength uint64
}

// GLFormat is the OpenGL view of a Vulkan format.
type GLFormat struct {
	Internal     uint32
	External     uint32
	Type         uint32
	IsCompressed bool
	IsSRGB       bool
}

// ToOpenGLFormat translates a KTX2 vkFormat code into OpenGL enums.
func ToOpenGLFormat(vkFormat uint32) (GLFormat, error) {
	f, err := resource.FormatFromVk(vkFormat)
	if err != nil {
		return GLFormat{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return GLFormat{
		Internal:     f.GLInternalFormat,
		External:     f.GLExternalFormat,
		Type:         f.GLType,
		IsCompressed: f.IsCompressed,
		IsSRGB:       f.IsSRGB,
	}, nil
}
