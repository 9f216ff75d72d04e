package objects

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

// ObjectID is the SHA-1 of an encoded object record.
type ObjectID [constants.HashByteLength]byte

// ZeroID is the all-zero id used by servers for empty advertisements.
var ZeroID ObjectID

// ParseObjectID decodes a 40 character hex hash.
func ParseObjectID(hash string) (ObjectID, error) {
	var id ObjectID
	if len(hash) != constants.HashStringLength {
		return id, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	if _, err := hex.Decode(id[:], []byte(hash)); err != nil {
		return id, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return id, nil
}

// ObjectIDFromBytes copies a raw 20 byte hash.
func ObjectIDFromBytes(raw []byte) (ObjectID, error) {
	var id ObjectID
	if len(raw) != constants.HashByteLength {
		return id, fmt.Errorf("%w: %d raw bytes", ErrInvalidHash, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// HashData returns the id of an already encoded record.
func HashData(data []byte) ObjectID {
	return ObjectID(sha1.Sum(data))
}

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 20 byte form used inside tree records.
func (id ObjectID) Bytes() []byte {
	return id[:]
}

func (id ObjectID) IsZero() bool {
	return id == ZeroID
}
