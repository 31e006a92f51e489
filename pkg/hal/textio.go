package hal

import (
	"io"
	"strconv"
)

// TextWriter implements the Serial write calls on top of an io.Writer.
// Transports embed it and add their own receive path. Write errors go
// nowhere useful on a console link and are dropped.
type TextWriter struct {
	W io.Writer
}

const hexDigits = "0123456789abcdef"

func (t *TextWriter) WriteString(s string) {
	io.WriteString(t.W, s)
}

func (t *TextWriter) WriteChar(c byte) {
	t.W.Write([]byte{c})
}

// WriteDec writes v in decimal followed by a single space so
// consecutive fields stay separated.
func (t *TextWriter) WriteDec(v uint8) {
	var buf [4]byte
	out := strconv.AppendUint(buf[:0], uint64(v), 10)
	out = append(out, ' ')
	t.W.Write(out)
}

// WriteHex writes v as 0x%04x.
func (t *TextWriter) WriteHex(v uint16) {
	out := []byte{'0', 'x',
		hexDigits[v>>12&0xf], hexDigits[v>>8&0xf],
		hexDigits[v>>4&0xf], hexDigits[v&0xf]}
	t.W.Write(out)
}

// WriteFixed writes num/den with two fraction digits, truncated.
func (t *TextWriter) WriteFixed(num int32, den uint32) {
	var buf [16]byte
	out := buf[:0]
	u := uint32(num)
	if num < 0 {
		out = append(out, '-')
		u = uint32(-num)
	}
	out = strconv.AppendUint(out, uint64(u/den), 10)
	out = append(out, '.')
	frac := uint32(uint64(u%den) * 100 / uint64(den))
	if frac < 10 {
		out = append(out, '0')
	}
	out = strconv.AppendUint(out, uint64(frac), 10)
	t.W.Write(out)
}

func (t *TextWriter) WriteEOL() {
	t.W.Write([]byte{'\r', '\n'})
}
