package pfm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Reader is the stream interface the tokenizer needs. *bufio.Reader and
// *bytes.Reader both satisfy it.
type Reader interface {
	io.Reader
	io.ByteScanner
}

// asReader returns r itself when it can unread bytes, otherwise a buffered
// wrapper. Callers must keep reading pixels from the returned Reader.
func asReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// ReadHeader parses the PFM header and leaves r at the first pixel byte.
func ReadHeader(r Reader) (Header, error) {
	var h Header

	magic := make([]byte, 2)
	if _, err := io.ReadFull(r, magic); err != nil {
		if isEOF(err) {
			return h, formatErrorf("magic", "file too short")
		}
		return h, fmt.Errorf("read magic: %w", err)
	}
	switch string(magic) {
	case MagicGrayscale:
		h.Bands = Grayscale
	case MagicColor:
		h.Bands = Color
	default:
		return h, formatErrorf("magic", "unknown bands description %q", magic)
	}

	var err error
	if h.Width, err = readDimension(r, "width"); err != nil {
		return h, err
	}
	if h.Height, err = readDimension(r, "height"); err != nil {
		return h, err
	}
	if h.Scale, err = readScale(r); err != nil {
		return h, err
	}
	if err := readTerminator(r); err != nil {
		return h, err
	}
	return h, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// skipSpace consumes a run of insignificant whitespace.
func skipSpace(r Reader) error {
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !isSpace(c) {
			return r.UnreadByte()
		}
	}
}

// readToken skips leading whitespace and returns the following run of
// non-whitespace bytes. The byte that ends the token is left unread.
func readToken(r Reader, field string) (string, error) {
	if err := skipSpace(r); err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}

	tok := make([]byte, 0, 16)
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("read %s: %w", field, err)
		}
		if isSpace(c) {
			if err := r.UnreadByte(); err != nil {
				return "", fmt.Errorf("read %s: %w", field, err)
			}
			break
		}
		if len(tok) == maxTokenLen {
			return "", formatErrorf(field, "token longer than %d bytes", maxTokenLen)
		}
		tok = append(tok, c)
	}

	if len(tok) == 0 {
		return "", formatErrorf(field, "missing")
	}
	return string(tok), nil
}

func readDimension(r Reader, field string) (int, error) {
	tok, err := readToken(r, field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, formatErrorf(field, "not an integer: %q", tok)
	}
	if v <= 0 {
		return 0, formatErrorf(field, "must be positive, got %d", v)
	}
	return v, nil
}

func readScale(r Reader) (float32, error) {
	tok, err := readToken(r, "scale")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, formatErrorf("scale", "not a number: %q", tok)
	}
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, formatErrorf("scale", "must be finite and non-zero, got %q", tok)
	}
	return float32(v), nil
}

// readTerminator consumes exactly one line terminator: an optional '\r'
// followed by a mandatory '\n'.
func readTerminator(r Reader) error {
	c, err := r.ReadByte()
	if err == nil && c == '\r' {
		c, err = r.ReadByte()
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return formatErrorf("terminator", "newline expected, got end of file")
		}
		return fmt.Errorf("read terminator: %w", err)
	}
	if c != '\n' {
		if isSpace(c) {
			return formatErrorf("terminator", "newline expected, got %q", c)
		}
		return formatErrorf("terminator", "whitespace expected, got %q", c)
	}
	return nil
}
