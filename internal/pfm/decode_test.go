package pfm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texview/texview/internal/resource"
)

// createTestPFM builds a PFM file in memory. rows are given top row first and
// are written bottom row first, as the format requires.
func createTestPFM(t *testing.T, header string, order binary.ByteOrder, rows [][]float32) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.WriteString(header)
	for y := len(rows) - 1; y >= 0; y-- {
		for _, v := range rows[y] {
			if err := binary.Write(buf, order, v); err != nil {
				t.Fatalf("write sample: %v", err)
			}
		}
	}
	return buf.Bytes()
}

// floatBytes encodes values with the given byte order.
func floatBytes(order binary.ByteOrder, vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		order.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func TestDecode_GrayscaleLittleEndianOnLittleHost(t *testing.T) {
	data := append([]byte("Pf\n2 1\n-1.0\n"), floatBytes(binary.LittleEndian, 1.0, 2.0)...)

	img := &resource.Image{}
	h, err := decode(bytes.NewReader(data), img, true)
	require.NoError(t, err)

	assert.Equal(t, Header{Bands: Grayscale, Width: 2, Height: 1, Scale: -1}, h)
	assert.Equal(t, 1, img.Format.Channels)
	assert.Equal(t, resource.GLR32F, img.Format.GLInternalFormat)
	assert.Equal(t, resource.GLRed, img.Format.GLExternalFormat)
	assert.Equal(t, resource.GLFloat, img.Format.GLType)
	assert.Equal(t, 2, img.Width())
	assert.Equal(t, 1, img.Height())
	assert.Equal(t, floatBytes(binary.LittleEndian, 1.0, 2.0), img.Base().Bytes)
}

func TestDecode_ColorBigEndianOnLittleHost(t *testing.T) {
	data := append([]byte("PF\n1 2\n1.0\n"), floatBytes(binary.BigEndian, 0, 0, 0, 1, 1, 1)...)

	img := &resource.Image{}
	h, err := decode(bytes.NewReader(data), img, true)
	require.NoError(t, err)

	assert.Equal(t, Color, h.Bands)
	assert.Equal(t, resource.GLRGB32F, img.Format.GLInternalFormat)
	assert.Equal(t, resource.GLRGB, img.Format.GLExternalFormat)

	// File row 0 is the bottom row, so (1,1,1) ends up on top.
	want := floatBytes(binary.LittleEndian, 1, 1, 1, 0, 0, 0)
	assert.Equal(t, want, img.Base().Bytes)
}

func TestDecode_LittleEndianFileOnBigHost(t *testing.T) {
	vals := []float32{0.5, -3.25, 1e-20, 7}
	data := append([]byte("Pf\n4 1\n-1\n"), floatBytes(binary.LittleEndian, vals...)...)

	img := &resource.Image{}
	_, err := decode(bytes.NewReader(data), img, false)
	require.NoError(t, err)

	assert.Equal(t, floatBytes(binary.BigEndian, vals...), img.Base().Bytes,
		"every sample must be byte-swapped")
}

func TestDecode_MatchingOrderKeepsBytes(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	for _, tc := range []struct {
		name       string
		scale      string
		hostLittle bool
	}{
		{"little file little host", "-1.0", true},
		{"big file big host", "1.0", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data := append([]byte("Pf\n2 1\n"+tc.scale+"\n"), raw...)
			img := &resource.Image{}
			_, err := decode(bytes.NewReader(data), img, tc.hostLittle)
			require.NoError(t, err)
			assert.Equal(t, raw, img.Base().Bytes)
		})
	}
}

func TestDecode_RowInversion(t *testing.T) {
	rows := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	data := createTestPFM(t, "Pf\n3 3\n-1.0\n", binary.LittleEndian, rows)

	img := &resource.Image{}
	_, err := Decode(bytes.NewReader(data), img)
	require.NoError(t, err)

	vals, err := img.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, vals)
}

func TestDecode_RoundTripBitExact(t *testing.T) {
	nan := math.Float32frombits(0x7fc00123)
	negZero := math.Float32frombits(0x80000000)
	denorm := math.Float32frombits(0x00000001)
	inf := float32(math.Inf(1))

	tests := []struct {
		name   string
		rows   [][]float32
		header string
	}{
		{
			name: "grayscale",
			rows: [][]float32{
				{0, 1, nan},
				{negZero, denorm, inf},
			},
			header: "Pf\n3 2\n",
		},
		{
			name: "color",
			rows: [][]float32{
				{1, 2, 3, 4, 5, 6},
				{-1, -2, nan, denorm, inf, negZero},
				{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
			},
			header: "PF\n2 3\n",
		},
	}

	for _, tt := range tests {
		for _, order := range []struct {
			name  string
			order binary.ByteOrder
			scale string
		}{
			{"little", binary.LittleEndian, "-1.0\n"},
			{"big", binary.BigEndian, "1.0\n"},
		} {
			t.Run(tt.name+"/"+order.name, func(t *testing.T) {
				data := createTestPFM(t, tt.header+order.scale, order.order, tt.rows)

				img := &resource.Image{}
				_, err := Decode(bytes.NewReader(data), img)
				require.NoError(t, err)

				got, err := img.Float32s()
				require.NoError(t, err)

				var want []float32
				for _, r := range tt.rows {
					want = append(want, r...)
				}
				require.Len(t, got, len(want))
				for i := range want {
					assert.Equal(t, math.Float32bits(want[i]), math.Float32bits(got[i]), "sample %d", i)
				}
			})
		}
	}
}

func TestDecode_BufferSize(t *testing.T) {
	tests := []struct {
		header string
		width  int
		height int
		chans  int
	}{
		{"Pf\n5 4\n-1.0\n", 5, 4, 1},
		{"PF\n5 4\n-1.0\n", 5, 4, 3},
		{"Pf 1 1 -1.0\n", 1, 1, 1},
		{"PF\n\n 7\t2 \r\n -1.0\r\n", 7, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			data := append([]byte(tt.header), make([]byte, tt.width*tt.height*tt.chans*4)...)
			img := &resource.Image{}
			_, err := Decode(bytes.NewReader(data), img)
			require.NoError(t, err)
			assert.Len(t, img.Base().Bytes, tt.width*tt.height*tt.chans*4)
		})
	}
}

func TestDecode_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"no pixels", []byte("Pf\n2 2\n-1.0\n")},
		{"ends mid row", append([]byte("PF\n2 2\n-1.0\n"), make([]byte, 24+12)...)},
		{"ends mid sample", append([]byte("Pf\n1 1\n-1.0\n"), 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &resource.Image{}
			_, err := Decode(bytes.NewReader(tt.data), img)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncatedData)
			assert.NotErrorIs(t, err, ErrInvalidFormat)
			assert.Nil(t, img.Base(), "partial pixels must not stay in the image")
		})
	}
}

func TestDecode_TrailingDataIgnored(t *testing.T) {
	data := append([]byte("Pf\n1 1\n-1.0\n"), floatBytes(binary.LittleEndian, 42, 99)...)
	img := &resource.Image{}
	_, err := decode(bytes.NewReader(data), img, true)
	require.NoError(t, err)
	assert.Equal(t, floatBytes(binary.LittleEndian, 42), img.Base().Bytes)
}

func TestDecode_PlainReader(t *testing.T) {
	data := createTestPFM(t, "PF\n2 1\n-1.0\n", binary.LittleEndian, [][]float32{{1, 2, 3, 4, 5, 6}})

	img := &resource.Image{}
	_, err := Decode(iotest.OneByteReader(bytes.NewReader(data)), img)
	require.NoError(t, err)

	vals, err := img.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)
}

func TestDecode_ReadErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(bytes.NewReader([]byte("Pf\n1 1\n-1.0\n")), iotest.ErrReader(boom))

	_, err := Decode(r, &resource.Image{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

type failingSink struct {
	formatErr error
	allocErr  error
	calls     []string
}

func (s *failingSink) SetPixelFormat(int, resource.Precision) error {
	s.calls = append(s.calls, "format")
	return s.formatErr
}

func (s *failingSink) AllocateBuffer(w, h, bpp int) ([]byte, error) {
	s.calls = append(s.calls, "alloc")
	if s.allocErr != nil {
		return nil, s.allocErr
	}
	return make([]byte, w*h*bpp), nil
}

func TestDecode_SinkProtocol(t *testing.T) {
	data := append([]byte("Pf\n1 1\n-1.0\n"), 0, 0, 0, 0)

	ok := &failingSink{}
	_, err := Decode(bytes.NewReader(data), ok)
	require.NoError(t, err)
	assert.Equal(t, []string{"format", "alloc"}, ok.calls)

	denied := errors.New("out of texture memory")
	bad := &failingSink{allocErr: denied}
	_, err = Decode(bytes.NewReader(data), bad)
	assert.ErrorIs(t, err, denied)

	// Header errors never reach the sink.
	untouched := &failingSink{}
	_, err = Decode(bytes.NewReader([]byte("PX\n1 1\n-1.0\n")), untouched)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Empty(t, untouched.calls)
}

func TestDecode_HugeDimensions(t *testing.T) {
	data := []byte("PF\n9223372036854775807 9223372036854775807\n-1.0\n")
	_, err := Decode(bytes.NewReader(data), &resource.Image{})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramp.pfm")
	data := createTestPFM(t, "PF\n2 2\n-1.0\n", binary.LittleEndian, [][]float32{
		{1, 0, 0, 0, 1, 0},
		{0, 0, 1, 1, 1, 1},
	})
	require.NoError(t, os.WriteFile(path, data, 0o600))

	img, err := Load(path)
	require.NoError(t, err)

	vals, err := img.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 1, 1}, vals)

	h, err := ParseHeaderFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header{Bands: Color, Width: 2, Height: 2, Scale: -1}, h)
	assert.True(t, h.LittleEndian())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.pfm"))
	assert.ErrorIs(t, err, ErrFileOpen)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	truncated := filepath.Join(dir, "short.pfm")
	require.NoError(t, os.WriteFile(truncated, []byte("Pf\n4 4\n-1.0\n\x00\x00"), 0o600))
	img, err := Load(truncated)
	assert.Nil(t, img, "no partial image on failure")
	assert.ErrorIs(t, err, ErrTruncatedData)
}
