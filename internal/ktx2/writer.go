package ktx2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sys/cpu"
)

// SaveOptions configures Save.
type SaveOptions struct {
	Supercompression uint32 // SupercompressionNone or SupercompressionZstd
	ZstdLevel        int    // zstd compression level (1-22); 0 means 3
}

// Data format descriptor constants (Khronos Data Format Specification).
const (
	dfdModelRGBSDA      = 1
	dfdPrimariesBT709   = 1
	dfdTransferLinear   = 1
	dfdVersion          = 2
	dfdSampleFloat      = 0x80
	dfdSampleSigned     = 0x40
	dfdChannelAlpha     = 15
	dfdFloatLower       = 0xBF800000 // -1.0f
	dfdFloatUpper       = 0x3F800000 // 1.0f
	dfdBasicHeaderBytes = 24
	dfdSampleBytes      = 16
)

// Save writes the texture as a KTX2 file. Every level of every layer must
// have been stored.
func (t *Texture) Save(w io.Writer, opts SaveOptions) error {
	if opts.Supercompression != SupercompressionNone && opts.Supercompression != SupercompressionZstd {
		return fmt.Errorf("%w: supercompression scheme %d", ErrUnsupported, opts.Supercompression)
	}

	raw := make([][]byte, t.Levels)
	for level := range raw {
		var buf bytes.Buffer
		for layer := 0; layer < t.Layers; layer++ {
			data := t.data[level][layer]
			if data == nil {
				return fmt.Errorf("%w: layer %d level %d", ErrMissingLevel, layer, level)
			}
			buf.Write(swapLittleEndian(data, t.format.Precision.Size()))
		}
		raw[level] = buf.Bytes()
	}

	payload := raw
	if opts.Supercompression == SupercompressionZstd {
		var err error
		if payload, err = compressLevels(raw, opts.ZstdLevel); err != nil {
			return err
		}
	}

	dfd := t.dataFormatDescriptor(opts.Supercompression)
	kvd := keyValueData(map[string]string{"KTXwriter": writerName})

	hdr := fileHeader{
		VkFormat:               t.VkFormat,
		TypeSize:               uint32(t.format.Precision.Size()), //nolint:gosec // G115: small constant
		PixelWidth:             uint32(t.Width),                   //nolint:gosec // G115: validated positive
		PixelHeight:            uint32(t.Height),                  //nolint:gosec // G115: validated positive
		FaceCount:              1,
		LevelCount:             uint32(t.Levels), //nolint:gosec // G115: bounded by mip chain length
		SupercompressionScheme: opts.Supercompression,
	}
	if t.Layers > 1 {
		hdr.LayerCount = uint32(t.Layers) //nolint:gosec // G115: validated positive
	}

	pos := uint64(headerSize + levelIndexSize*t.Levels) //nolint:gosec // G115: small
	hdr.DFDByteOffset = uint32(pos)                     //nolint:gosec // G115: small
	hdr.DFDByteLength = uint32(len(dfd))                //nolint:gosec // G115: small
	pos += uint64(len(dfd))
	hdr.KVDByteOffset = uint32(pos)      //nolint:gosec // G115: small
	hdr.KVDByteLength = uint32(len(kvd)) //nolint:gosec // G115: small
	pos += uint64(len(kvd))

	align := t.levelAlignment(opts.Supercompression)
	index := make([]levelIndex, t.Levels)
	padding := make([]uint64, t.Levels)
	for level := t.Levels - 1; level >= 0; level-- {
		aligned := alignUp(pos, align)
		padding[level] = aligned - pos
		index[level] = levelIndex{
			ByteOffset:             aligned,
			ByteLength:             uint64(len(payload[level])),
			UncompressedByteLength: uint64(len(raw[level])),
		}
		pos = aligned + uint64(len(payload[level]))
	}

	var out bytes.Buffer
	out.Grow(int(pos)) //nolint:gosec // G115: whole file is held in memory anyway
	out.Write(Identifier[:])
	if err := binary.Write(&out, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("ktx2: write header: %w", err)
	}
	if err := binary.Write(&out, binary.LittleEndian, index); err != nil {
		return fmt.Errorf("ktx2: write level index: %w", err)
	}
	out.Write(dfd)
	out.Write(kvd)
	for level := t.Levels - 1; level >= 0; level-- {
		out.Write(make([]byte, padding[level]))
		out.Write(payload[level])
	}

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("ktx2: write: %w", err)
	}
	return nil
}

// SaveFile writes the texture to path.
func (t *Texture) SaveFile(path string, opts SaveOptions) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the caller by design.
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return t.Save(f, opts)
}

// levelAlignment returns the required alignment of level data:
// lcm(texel block size, 4) without supercompression, 1 with it.
func (t *Texture) levelAlignment(scheme uint32) uint64 {
	if scheme != SupercompressionNone {
		return 1
	}
	bpp := uint64(t.format.BytesPerPixel()) //nolint:gosec // G115: small
	return bpp * 4 / gcd(bpp, 4)
}

// dataFormatDescriptor builds a basic DFD block with one float sample per
// channel.
func (t *Texture) dataFormatDescriptor(scheme uint32) []byte {
	channels := t.format.Channels
	typeSize := t.format.Precision.Size()
	blockSize := dfdBasicHeaderBytes + dfdSampleBytes*channels

	var b bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&b, le, uint32(4+blockSize)) //nolint:gosec // G115: small
	_ = binary.Write(&b, le, uint32(0))           // vendorId=Khronos, descriptorType=basic
	_ = binary.Write(&b, le, uint16(dfdVersion))
	_ = binary.Write(&b, le, uint16(blockSize)) //nolint:gosec // G115: small
	b.Write([]byte{dfdModelRGBSDA, dfdPrimariesBT709, dfdTransferLinear, 0})
	b.Write([]byte{0, 0, 0, 0}) // texel block dimensions minus one

	planes := make([]byte, 8)
	if scheme == SupercompressionNone {
		planes[0] = byte(t.format.BytesPerPixel())
	}
	b.Write(planes)

	for c := 0; c < channels; c++ {
		id := byte(c)
		if c == 3 {
			id = dfdChannelAlpha
		}
		_ = binary.Write(&b, le, uint16(c*typeSize*8)) //nolint:gosec // G115: small
		b.WriteByte(byte(typeSize*8 - 1))
		b.WriteByte(id | dfdSampleFloat | dfdSampleSigned)
		b.Write([]byte{0, 0, 0, 0}) // sample position
		_ = binary.Write(&b, le, uint32(dfdFloatLower))
		_ = binary.Write(&b, le, uint32(dfdFloatUpper))
	}
	return b.Bytes()
}

// keyValueData encodes entries as NUL-terminated key/value pairs, each
// padded to 4 bytes. Keys are written in sorted order.
func keyValueData(entries map[string]string) []byte {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b bytes.Buffer
	for _, k := range keys {
		v := entries[k]
		n := len(k) + 1 + len(v) + 1
		_ = binary.Write(&b, binary.LittleEndian, uint32(n)) //nolint:gosec // G115: small
		b.WriteString(k)
		b.WriteByte(0)
		b.WriteString(v)
		b.WriteByte(0)
		b.Write(make([]byte, alignUp(uint64(n), 4)-uint64(n)))
	}
	return b.Bytes()
}

func compressLevels(raw [][]byte, level int) ([][]byte, error) {
	if level == 0 {
		level = 3
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("ktx2: zstd encoder: %w", err)
	}
	defer func() {
		_ = enc.Close()
	}()

	out := make([][]byte, len(raw))
	for i, data := range raw {
		out[i] = enc.EncodeAll(data, nil)
	}
	return out, nil
}

// swapLittleEndian converts every typeSize-byte value between host and
// little-endian order. On little-endian hosts data is returned as is.
func swapLittleEndian(data []byte, typeSize int) []byte {
	if !cpu.IsBigEndian || typeSize < 2 {
		return data
	}
	out := append([]byte(nil), data...)
	for i := 0; i+typeSize <= len(out); i += typeSize {
		v := out[i : i+typeSize]
		for a, b := 0, typeSize-1; a < b; a, b = a+1, b-1 {
			v[a], v[b] = v[b], v[a]
		}
	}
	return out
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) / align * align
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
