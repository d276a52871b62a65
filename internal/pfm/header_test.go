package pfm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Header
	}{
		{"grayscale", "Pf\n2 1\n-1.0\n", Header{Grayscale, 2, 1, -1}},
		{"color", "PF\n640 480\n1.0\n", Header{Color, 640, 480, 1}},
		{"crlf terminator", "PF\r\n3 4\r\n-0.5\r\n", Header{Color, 3, 4, -0.5}},
		{"single line", "Pf 8 8 1\n", Header{Grayscale, 8, 8, 1}},
		{"runs of whitespace", "Pf \t\r\n\n  5\t\t\n7 \n\n  -2.5\n", Header{Grayscale, 5, 7, -2.5}},
		{"no space after magic", "PF3 2 1.0\n", Header{Color, 3, 2, 1}},
		{"exponent scale", "Pf\n1 1\n-1e0\n", Header{Grayscale, 1, 1, -1}},
		{"explicit plus", "Pf\n+4 +4\n+1.0\n", Header{Grayscale, 4, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(bytes.NewReader([]byte(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, h)
		})
	}
}

func TestReadHeader_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"unknown magic", "PX\n2 1\n-1.0\n", "magic"},
		{"lowercase magic", "pf\n2 1\n-1.0\n", "magic"},
		{"empty file", "", "magic"},
		{"one byte", "P", "magic"},
		{"missing width", "Pf\n", "width"},
		{"non numeric width", "Pf\nabc 1\n-1.0\n", "width"},
		{"fractional width", "Pf\n2.5 1\n-1.0\n", "width"},
		{"zero width", "Pf\n0 1\n-1.0\n", "width"},
		{"negative height", "Pf\n2 -1\n-1.0\n", "height"},
		{"missing height", "Pf\n2", "height"},
		{"missing scale", "Pf\n2 1\n", "scale"},
		{"non numeric scale", "Pf\n2 1\nfast\n", "scale"},
		{"zero scale", "Pf\n2 1\n0.0\n", "scale"},
		{"nan scale", "Pf\n2 1\nNaN\n", "scale"},
		{"infinite scale", "Pf\n2 1\n-Inf\n", "scale"},
		{"space after scale", "Pf\n2 1\n-1.0 \n", "terminator"},
		{"tab after scale", "Pf\n2 1\n-1.0\t", "terminator"},
		{"eof after scale", "Pf\n2 1\n-1.0", "terminator"},
		{"cr then garbage", "Pf\n2 1\n-1.0\rx", "terminator"},
		{"cr cr newline", "Pf\n2 1\n-1.0\r\r\n", "terminator"},
		{"huge token", "Pf\n" + string(bytes.Repeat([]byte{'9'}, 100)) + " 1\n-1.0\n", "width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader([]byte(tt.input)))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)

			var fe *FormatError
			require.True(t, errors.As(err, &fe), "expected *FormatError, got %T", err)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestReadHeader_TerminatorDiagnostics(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader([]byte("Pf\n2 1\n-1.0 ")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newline expected")

	_, err = ReadHeader(bytes.NewReader([]byte("Pf\n2 1\n-1.0\rZ")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whitespace expected")
}

func TestReadHeader_StopsAtPixelData(t *testing.T) {
	// The first pixel byte is itself a newline; only one newline may be consumed.
	pixels := []byte{'\n', '\r', ' ', '\t'}
	r := bytes.NewReader(append([]byte("Pf\n1 1\n-1.0\n"), pixels...))

	_, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, len(pixels), r.Len())

	rest := make([]byte, len(pixels))
	_, err = r.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, pixels, rest)
}

func TestReadHeader_CRLFStopsAtPixelData(t *testing.T) {
	r := bytes.NewReader([]byte("PF\n1 1\n1.0\r\n\n\n\n\n\n\n\n\n\n\n\n"))
	_, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, 11, r.Len())
}

func TestHeaderHelpers(t *testing.T) {
	h := Header{Bands: Color, Width: 10, Height: 2, Scale: 1}
	assert.False(t, h.LittleEndian())
	assert.Equal(t, 120, h.RowSize())
	assert.Equal(t, "PF", h.Bands.Magic())
	assert.Equal(t, "color", h.Bands.String())

	g := Header{Bands: Grayscale, Width: 10, Height: 2, Scale: -4}
	assert.True(t, g.LittleEndian())
	assert.Equal(t, 40, g.RowSize())
	assert.Equal(t, "Pf", g.Bands.Magic())
	assert.Equal(t, "unknown(2)", BandKind(2).String())
}
