// Package pktline reads and writes the pkt-line framing used by the git
// smart protocols. Each line starts with four hex digits giving the total
// length including the prefix itself. "0000" is a flush-pkt and "0001" a
// delim-pkt; neither carries a payload.
package pktline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
)

const (
	// prefixLen is the size of the hex length prefix.
	prefixLen = 4

	// MaxLineLen is the largest value the length prefix can hold.
	MaxLineLen = 0xffff

	// MaxPayloadLen is the largest payload a single line can carry.
	MaxPayloadLen = MaxLineLen - prefixLen
)

var (
	// ErrProtocol reports a malformed pkt-line stream.
	ErrProtocol = errors.New("protocol error")

	// ErrTooLong is returned when a payload does not fit in one line.
	ErrTooLong = errors.New("pkt-line too long")
)

// Special packets.
var (
	FlushPkt = []byte("0000")
	DelimPkt = []byte("0001")
)

// Kind distinguishes data lines from the payload-less control packets.
type Kind int

const (
	Data Kind = iota
	Flush
	Delim
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case Flush:
		return "flush"
	case Delim:
		return "delim"
	default:
		return "unknown"
	}
}

// Line is one decoded pkt-line. Payload is nil for Flush and Delim.
type Line struct {
	Kind    Kind
	Payload []byte
}

// Text returns the payload without a single trailing newline.
func (l Line) Text() string {
	return string(bytes.TrimSuffix(l.Payload, []byte("\n")))
}

// Reader decodes lines lazily from an underlying reader.
type Reader struct {
	r      io.Reader
	prefix [prefixLen]byte
}

// NewReader creates a new Reader from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next decodes the next line. It returns io.EOF when the input ends cleanly
// on a line boundary, and an error wrapping ErrProtocol for anything else
// that does not frame correctly.
func (r *Reader) Next() (Line, error) {
	n, err := io.ReadFull(r.r, r.prefix[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return Line{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Line{}, fmt.Errorf("%w: truncated length prefix %q", ErrProtocol, r.prefix[:n])
		}
		return Line{}, err
	}

	length, err := parseLength(r.prefix[:])
	if err != nil {
		return Line{}, err
	}

	switch {
	case length == 0:
		return Line{Kind: Flush}, nil
	case length == 1:
		return Line{Kind: Delim}, nil
	case length < prefixLen:
		return Line{}, fmt.Errorf("%w: invalid line length %d", ErrProtocol, length)
	}

	payload := make([]byte, length-prefixLen)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Line{}, fmt.Errorf("%w: line declares %d payload bytes but input ended", ErrProtocol, len(payload))
		}
		return Line{}, err
	}

	return Line{Kind: Data, Payload: payload}, nil
}

// All yields every remaining line. Iteration stops after the first error,
// which is yielded with a zero Line; a clean end of input is not an error.
func (r *Reader) All() iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		for {
			line, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

func parseLength(prefix []byte) (int, error) {
	for _, c := range prefix {
		if !isHex(c) {
			return 0, fmt.Errorf("%w: invalid length prefix %q", ErrProtocol, prefix)
		}
	}
	length, err := strconv.ParseUint(string(prefix), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length prefix %q", ErrProtocol, prefix)
	}
	return int(length), nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Encode frames payload as a single data line.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLong, len(payload))
	}
	line := make([]byte, 0, prefixLen+len(payload))
	line = fmt.Appendf(line, "%04x", prefixLen+len(payload))
	return append(line, payload...), nil
}

// Writer writes pkt-line records to an underlying writer.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer from w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteLine writes p as a single data line.
func (w *Writer) WriteLine(p []byte) error {
	line, err := Encode(p)
	if err != nil {
		return err
	}
	_, err = w.w.Write(line)
	return err
}

// WriteString writes s as a single data line.
func (w *Writer) WriteString(s string) error {
	return w.WriteLine([]byte(s))
}

// Flush writes a flush-pkt.
func (w *Writer) Flush() error {
	_, err := w.w.Write(FlushPkt)
	return err
}

// Delim writes a delim-pkt.
func (w *Writer) Delim() error {
	_, err := w.w.Write(DelimPkt)
	return err
}
