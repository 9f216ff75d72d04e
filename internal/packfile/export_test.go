package packfile

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// testEntry is one pack entry; base is written between header and data for deltas.
type testEntry struct {
	kind Kind
	size uint64
	base []byte
	data []byte
}

func wholeEntry(kind Kind, data string) testEntry {
	return testEntry{kind: kind, size: uint64(len(data)), data: []byte(data)}
}

// encodeObjectHeader writes the variable-length entry header.
func encodeObjectHeader(kind Kind, size uint64) []byte {
	c := byte(kind)<<4 | byte(size&0x0f)
	size >>= 4

	var out []byte
	for size > 0 {
		out = append(out, c|0x80)
		c = byte(size & 0x7f)
		size >>= 7
	}
	return append(out, c)
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// buildPack assembles a version 2 pack declaring count objects.
func buildPack(t *testing.T, count uint32, withTrailer bool, entries ...testEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(signature[:])
	binary.Write(&buf, binary.BigEndian, uint32(Version))
	binary.Write(&buf, binary.BigEndian, count)

	for _, entry := range entries {
		buf.Write(encodeObjectHeader(entry.kind, entry.size))
		buf.Write(entry.base)
		buf.Write(deflate(t, entry.data))
	}

	if withTrailer {
		sum := sha1.Sum(buf.Bytes())
		buf.Write(sum[:])
	}
	return buf.Bytes()
}
