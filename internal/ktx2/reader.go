package ktx2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/texview/texview/internal/mmap"
)

// minDecoderMemory keeps the zstd limit above the 1 KiB minimum window, so
// frames for tiny levels still decode.
const minDecoderMemory = 1 << 20

// Read parses a complete KTX2 file. Only uncompressed float formats with a
// single face are supported; levels may be Zstandard supercompressed.
func Read(r io.Reader) (*Texture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ktx2: read: %w", err)
	}
	return Parse(data)
}

// ReadFile parses the KTX2 file at path. The file is memory-mapped; level
// data is copied out before it is unmapped.
func ReadFile(path string) (tex *Texture, err error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Parse(m.Bytes())
}

// Parse decodes a KTX2 file held in memory.
//
//nolint:gocyclo,cyclop // Header validation is a flat list of checks.
func Parse(data []byte) (*Texture, error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(Identifier)], Identifier[:]) {
		return nil, ErrInvalidIdentifier
	}

	var hdr fileHeader
	if err := binary.Read(bytes.NewReader(data[len(Identifier):headerSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("ktx2: read header: %w", err)
	}

	switch {
	case hdr.SupercompressionScheme != SupercompressionNone && hdr.SupercompressionScheme != SupercompressionZstd:
		return nil, fmt.Errorf("%w: supercompression scheme %d", ErrUnsupported, hdr.SupercompressionScheme)
	case hdr.FaceCount != 1:
		return nil, fmt.Errorf("%w: %d faces", ErrUnsupported, hdr.FaceCount)
	case hdr.PixelDepth > 1:
		return nil, fmt.Errorf("%w: 3D texture", ErrUnsupported)
	}

	layers := max(1, int(hdr.LayerCount))
	levels := max(1, int(hdr.LevelCount))
	t, err := NewTexture(hdr.VkFormat, int(hdr.PixelWidth), int(hdr.PixelHeight), layers, levels)
	if err != nil {
		return nil, err
	}
	if hdr.TypeSize != uint32(t.format.Precision.Size()) { //nolint:gosec // G115: small
		return nil, fmt.Errorf("%w: typeSize %d for vkFormat %d", ErrUnsupported, hdr.TypeSize, hdr.VkFormat)
	}

	indexEnd := headerSize + levelIndexSize*levels
	if len(data) < indexEnd {
		return nil, fmt.Errorf("%w: level index", ErrOutOfRange)
	}
	index := make([]levelIndex, levels)
	if err := binary.Read(bytes.NewReader(data[headerSize:indexEnd]), binary.LittleEndian, index); err != nil {
		return nil, fmt.Errorf("ktx2: read level index: %w", err)
	}

	var dec *zstd.Decoder
	if hdr.SupercompressionScheme == SupercompressionZstd {
		base, _ := t.LevelSize(0)
		dec, err = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(uint64(max(base*layers, minDecoderMemory))), //nolint:gosec // G115: positive
		)
		if err != nil {
			return nil, fmt.Errorf("ktx2: zstd decoder: %w", err)
		}
		defer dec.Close()
	}

	for level, li := range index {
		end := li.ByteOffset + li.ByteLength
		if end < li.ByteOffset || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: level %d at %d+%d, file is %d bytes", ErrOutOfRange, level, li.ByteOffset, li.ByteLength, len(data))
		}
		payload := data[li.ByteOffset:end]

		size, _ := t.LevelSize(level)
		want := size * layers
		if li.UncompressedByteLength != uint64(want) { //nolint:gosec // G115: positive
			return nil, fmt.Errorf("%w: level %d declares %d bytes, want %d", ErrLevelSize, level, li.UncompressedByteLength, want)
		}

		if dec != nil {
			payload, err = dec.DecodeAll(payload, make([]byte, 0, want))
			if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
				return nil, fmt.Errorf("%w: level %d inflates past %d bytes", ErrLevelSize, level, want)
			}
			if err != nil {
				return nil, fmt.Errorf("ktx2: level %d: zstd: %w", level, err)
			}
		}

		if len(payload) != want {
			return nil, fmt.Errorf("%w: level %d has %d bytes, want %d", ErrLevelSize, level, len(payload), want)
		}
		payload = swapLittleEndian(payload, t.format.Precision.Size())
		for layer := 0; layer < layers; layer++ {
			if err := t.StoreLevel(layer, level, payload[layer*size:(layer+1)*size]); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}
