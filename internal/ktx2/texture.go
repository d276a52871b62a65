package ktx2

import (
	"fmt"

	"github.com/texview/texview/internal/resource"
)

// Texture is level storage for a 2D (array) texture. Level data is kept per
// layer in host byte order.
type Texture struct {
	VkFormat uint32
	Width    int
	Height   int
	Layers   int
	Levels   int

	format resource.Format
	data   [][][]byte // [level][layer]
}

// NewTexture allocates storage for the given format and dimensions.
func NewTexture(vkFormat uint32, width, height, layers, levels int) (*Texture, error) {
	f, err := resource.FormatFromVk(vkFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if width <= 0 || height <= 0 || layers <= 0 || levels <= 0 {
		return nil, fmt.Errorf("%w: %dx%d, %d layers, %d levels", ErrUnsupported, width, height, layers, levels)
	}
	if maxLevels := mipCount(width, height); levels > maxLevels {
		return nil, fmt.Errorf("%w: %d levels requested, %dx%d allows %d", ErrUnsupported, levels, width, height, maxLevels)
	}

	data := make([][][]byte, levels)
	for i := range data {
		data[i] = make([][]byte, layers)
	}
	return &Texture{
		VkFormat: vkFormat,
		Width:    width,
		Height:   height,
		Layers:   layers,
		Levels:   levels,
		format:   f,
		data:     data,
	}, nil
}

// Format returns the pixel format of the texture.
func (t *Texture) Format() resource.Format {
	return t.format
}

// LevelDims returns the width and height of a mip level.
func (t *Texture) LevelDims(level int) (int, int) {
	return max(1, t.Width>>level), max(1, t.Height>>level)
}

// LevelSize returns the size in bytes of one layer of the given level.
func (t *Texture) LevelSize(level int) (int, error) {
	if level < 0 || level >= t.Levels {
		return 0, fmt.Errorf("%w: level %d of %d", ErrOutOfRange, level, t.Levels)
	}
	w, h := t.LevelDims(level)
	return resource.BufferSize(w, h, t.format.BytesPerPixel())
}

// StoreLevel copies data into one layer of one level.
func (t *Texture) StoreLevel(layer, level int, data []byte) error {
	size, err := t.LevelSize(level)
	if err != nil {
		return err
	}
	if layer < 0 || layer >= t.Layers {
		return fmt.Errorf("%w: layer %d of %d", ErrOutOfRange, layer, t.Layers)
	}
	if len(data) != size {
		return fmt.Errorf("%w: level %d expects %d bytes, got %d", ErrLevelSize, level, size, len(data))
	}
	t.data[level][layer] = append([]byte(nil), data...)
	return nil
}

// Level returns the stored bytes of one layer of one level, or nil.
func (t *Texture) Level(layer, level int) []byte {
	if level < 0 || level >= t.Levels || layer < 0 || layer >= t.Layers {
		return nil
	}
	return t.data[level][layer]
}

// FromImage copies every layer and level of img into a new texture. Only
// single-face images are supported.
func FromImage(img *resource.Image) (*Texture, error) {
	base := img.Base()
	if base == nil {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnsupported)
	}
	vk := img.Format.VkFormat()
	levels := len(img.Layers[0].Faces[0].Mipmaps)

	t, err := NewTexture(vk, base.Width, base.Height, len(img.Layers), levels)
	if err != nil {
		return nil, err
	}
	for li, layer := range img.Layers {
		if len(layer.Faces) != 1 {
			return nil, fmt.Errorf("%w: %d faces in layer %d", ErrUnsupported, len(layer.Faces), li)
		}
		mips := layer.Faces[0].Mipmaps
		if len(mips) != levels {
			return nil, fmt.Errorf("%w: layer %d has %d levels, want %d", ErrUnsupported, li, len(mips), levels)
		}
		for level, m := range mips {
			if err := t.StoreLevel(li, level, m.Bytes); err != nil {
				return nil, fmt.Errorf("layer %d: %w", li, err)
			}
		}
	}
	return t, nil
}

// Image converts the texture into an image resource.
func (t *Texture) Image() (*resource.Image, error) {
	img := resource.New(t.format)
	img.Layers = make([]resource.Layer, t.Layers)
	for li := range img.Layers {
		mips := make([]resource.Mipmap, t.Levels)
		for level := range mips {
			data := t.data[level][li]
			if data == nil {
				return nil, fmt.Errorf("%w: layer %d level %d", ErrMissingLevel, li, level)
			}
			w, h := t.LevelDims(level)
			mips[level] = resource.Mipmap{Width: w, Height: h, Bytes: data}
		}
		img.Layers[li].Faces = []resource.Face{{Mipmaps: mips}}
	}
	return img, nil
}

// mipCount returns the length of a full mip chain.
func mipCount(width, height int) int {
	n := 1
	for d := max(width, height); d > 1; d >>= 1 {
		n++
	}
	return n
}
