package packfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/objects"
)

var (
	// ErrCorruptPack reports a pack stream that cannot be decoded.
	ErrCorruptPack = errors.New("corrupt pack")

	// ErrUnsupportedObjectKind reports a delta entry, which is not resolved.
	ErrUnsupportedObjectKind = errors.New("unsupported pack object kind")
)

var signature = [4]byte{'P', 'A', 'C', 'K'}

const (
	// Version is the only pack version understood.
	Version = 2

	// HeaderLen is the size of the fixed pack header.
	HeaderLen = 12

	// TrailerLen is the size of the optional SHA-1 pack trailer.
	TrailerLen = 20

	// maxHeaderBytes bounds the variable-length object header. Ten bytes
	// already carry 4+9*7 = 67 size bits.
	maxHeaderBytes = 10
)

// Header is the fixed 12 byte pack header.
type Header struct {
	Signature [4]byte
	Version   uint32
	Count     uint32
}

// ParseHeader validates and decodes the fixed header at the start of pack.
func ParseHeader(pack []byte) (Header, error) {
	if len(pack) < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d bytes is too short for a header", ErrCorruptPack, len(pack))
	}

	var header Header
	copy(header.Signature[:], pack[:4])
	if header.Signature != signature {
		return Header{}, fmt.Errorf("%w: bad signature %q", ErrCorruptPack, pack[:4])
	}

	header.Version = binary.BigEndian.Uint32(pack[4:8])
	if header.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptPack, header.Version)
	}

	header.Count = binary.BigEndian.Uint32(pack[8:12])
	return header, nil
}

// Kind is the 3 bit object type stored in a pack entry header.
type Kind uint8

const (
	KindCommit   Kind = 1
	KindTree     Kind = 2
	KindBlob     Kind = 3
	KindTag      Kind = 4
	KindOfsDelta Kind = 6
	KindRefDelta Kind = 7
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	case KindOfsDelta:
		return "ofs-delta"
	case KindRefDelta:
		return "ref-delta"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ObjectType maps whole-object kinds to their object type.
func (k Kind) ObjectType() (objects.ObjectType, bool) {
	switch k {
	case KindCommit:
		return objects.CommitObjectType, true
	case KindTree:
		return objects.TreeObjectType, true
	case KindBlob:
		return objects.BlobObjectType, true
	case KindTag:
		return objects.TagObjectType, true
	default:
		return "", false
	}
}

// IsDelta reports whether entries of this kind need a base object.
func (k Kind) IsDelta() bool {
	return k == KindOfsDelta || k == KindRefDelta
}

// ObjectHeader describes one pack entry. Offset is where the entry header
// starts, relative to the beginning of the pack.
type ObjectHeader struct {
	Type   Kind
	Size   uint64
	Offset int
}

// UnsupportedObjectError is returned for delta entries. The decoder has
// already moved past the entry when it is reported.
type UnsupportedObjectError struct {
	Type   Kind
	Offset int
}

func (e *UnsupportedObjectError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d", ErrUnsupportedObjectKind, e.Type, e.Offset)
}

func (e *UnsupportedObjectError) Unwrap() error {
	return ErrUnsupportedObjectKind
}

// parseObjectHeader decodes the variable-length entry header at data[offset:]
// and returns it with the number of bytes it occupies.
//
// The first byte holds a continuation bit, three type bits and the low four
// size bits. Every following byte holds a continuation bit and seven more
// size bits, least significant group first.
func parseObjectHeader(data []byte, offset int) (ObjectHeader, int, error) {
	if offset >= len(data) {
		return ObjectHeader{}, 0, fmt.Errorf("%w: missing object header at offset %d", ErrCorruptPack, offset)
	}

	c := data[offset]
	header := ObjectHeader{
		Type:   Kind((c >> 4) & 0x07),
		Size:   uint64(c & 0x0f),
		Offset: offset,
	}

	n := 1
	shift := uint(4)
	for c&0x80 != 0 {
		if n >= maxHeaderBytes {
			return ObjectHeader{}, 0, fmt.Errorf("%w: object size overflows at offset %d", ErrCorruptPack, offset)
		}
		if offset+n >= len(data) {
			return ObjectHeader{}, 0, fmt.Errorf("%w: truncated object header at offset %d", ErrCorruptPack, offset)
		}
		c = data[offset+n]
		group := uint64(c & 0x7f)
		if shift > 57 && group>>(64-shift) != 0 {
			return ObjectHeader{}, 0, fmt.Errorf("%w: object size overflows at offset %d", ErrCorruptPack, offset)
		}
		header.Size |= group << shift
		shift += 7
		n++
	}

	switch header.Type {
	case KindCommit, KindTree, KindBlob, KindTag, KindOfsDelta, KindRefDelta:
	default:
		return ObjectHeader{}, 0, fmt.Errorf("%w: invalid object type %d at offset %d", ErrCorruptPack, header.Type, offset)
	}

	return header, n, nil
}
