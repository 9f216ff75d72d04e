// Package packfile decodes version 2 git pack streams as sent by
// git-upload-pack. Whole objects are inflated and returned; delta entries
// are skipped and reported with UnsupportedObjectError.
package packfile

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/klauspost/compress/zlib"
)

// maxDeflateRatio is the best compression ratio deflate can reach.
const maxDeflateRatio = 1032

// Object is one whole object read from a pack.
type Object struct {
	Header  ObjectHeader
	Type    objects.ObjectType
	Payload []byte
}

// Encode returns the object's id and its loose object record.
func (o *Object) Encode() (objects.ObjectID, []byte, error) {
	return objects.Encode(o.Type, o.Payload)
}

// Decoder walks the entries of an in-memory pack.
type Decoder struct {
	data      []byte
	header    Header
	pos       int
	remaining uint32
	err       error
}

// NewDecoder checks the pack header and positions the decoder at the first entry.
func NewDecoder(pack []byte) (*Decoder, error) {
	header, err := ParseHeader(pack)
	if err != nil {
		return nil, err
	}

	return &Decoder{
		data:      pack,
		header:    header,
		pos:       HeaderLen,
		remaining: header.Count,
	}, nil
}

// Header returns the pack header.
func (d *Decoder) Header() Header {
	return d.header
}

// Remaining returns how many entries have not been read yet.
func (d *Decoder) Remaining() int {
	return int(d.remaining)
}

// Offset returns the current cursor position within the pack.
func (d *Decoder) Offset() int {
	return d.pos
}

// Next decodes the next entry. After the last entry it verifies the
// trailer and returns io.EOF. Delta entries yield an *UnsupportedObjectError
// and decoding may continue; any other error is sticky.
func (d *Decoder) Next() (*Object, error) {
	if d.err != nil {
		return nil, d.err
	}

	if d.remaining == 0 {
		if err := d.verifyTrailer(); err != nil {
			d.err = err
			return nil, err
		}
		return nil, io.EOF
	}

	object, err := d.next()
	if err != nil {
		var unsupported *UnsupportedObjectError
		if !errors.As(err, &unsupported) {
			d.err = err
		}
		return nil, err
	}
	return object, nil
}

func (d *Decoder) next() (*Object, error) {
	header, n, err := parseObjectHeader(d.data, d.pos)
	if err != nil {
		return nil, err
	}
	cursor := d.pos + n

	switch header.Type {
	case KindOfsDelta:
		cursor, err = skipOffset(d.data, cursor)
		if err != nil {
			return nil, err
		}
	case KindRefDelta:
		cursor += constants.HashByteLength
		if cursor > len(d.data) {
			return nil, fmt.Errorf("%w: truncated delta base at offset %d", ErrCorruptPack, header.Offset)
		}
	}

	payload, consumed, err := inflate(d.data[cursor:], header.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: object at offset %d: %v", ErrCorruptPack, header.Offset, err)
	}

	d.pos = cursor + consumed
	d.remaining--

	if header.Type.IsDelta() {
		return nil, &UnsupportedObjectError{Type: header.Type, Offset: header.Offset}
	}

	objectType, _ := header.Type.ObjectType()
	return &Object{
		Header:  header,
		Type:    objectType,
		Payload: payload,
	}, nil
}

// inflate decompresses one zlib stream from the start of data. It fails
// unless the stream yields exactly size bytes and its checksum matches.
// The second result is the number of compressed bytes the stream used.
func inflate(data []byte, size uint64) ([]byte, int, error) {
	if size > uint64(len(data))*maxDeflateRatio {
		return nil, 0, fmt.Errorf("declared size %d exceeds what %d compressed bytes can hold", size, len(data))
	}

	// bytes.Reader is an io.ByteReader, so zlib consumes only its own stream
	reader := bytes.NewReader(data)
	zr, err := zlib.NewReader(reader)
	if err != nil {
		return nil, 0, err
	}
	defer zr.Close()

	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, zr, int64(size)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("stream ended after %d of %d bytes", payload.Len(), size)
		}
		return nil, 0, err
	}

	// Reading past the payload makes zlib verify the adler32 checksum
	var extra [1]byte
	n, err := io.ReadFull(zr, extra[:])
	switch {
	case n > 0:
		return nil, 0, fmt.Errorf("stream is longer than declared size %d", size)
	case !errors.Is(err, io.EOF):
		return nil, 0, err
	}

	return payload.Bytes(), len(data) - reader.Len(), nil
}

// skipOffset moves past the base offset of an ofs-delta entry.
func skipOffset(data []byte, cursor int) (int, error) {
	for i := 0; i < maxHeaderBytes; i++ {
		if cursor >= len(data) {
			return 0, fmt.Errorf("%w: truncated delta offset", ErrCorruptPack)
		}
		c := data[cursor]
		cursor++
		if c&0x80 == 0 {
			return cursor, nil
		}
	}
	return 0, fmt.Errorf("%w: delta offset overflows", ErrCorruptPack)
}

// verifyTrailer accepts either no trailer or a SHA-1 of everything before it.
func (d *Decoder) verifyTrailer() error {
	rest := d.data[d.pos:]
	switch len(rest) {
	case 0:
		return nil
	case TrailerLen:
		sum := sha1.Sum(d.data[:d.pos])
		if !bytes.Equal(sum[:], rest) {
			return fmt.Errorf("%w: trailer checksum mismatch", ErrCorruptPack)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d unexpected bytes after %d objects", ErrCorruptPack, len(rest), d.header.Count)
	}
}
