package objects

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

// Encode builds the canonical "<type> <size>\0<payload>" record and its id.
// The id covers the whole record, so type and size are part of the identity.
func Encode(objectType ObjectType, payload []byte) (ObjectID, []byte, error) {
	if !objectType.IsValid() {
		return ObjectID{}, nil, fmt.Errorf("invalid object type: %s - hash not computed", objectType)
	}

	header := Header(objectType, len(payload))
	data := make([]byte, 0, len(header)+len(payload))
	data = append(data, header...)
	data = append(data, payload...)

	return HashData(data), data, nil
}

// ComputeHash returns the id a payload would have when stored as objectType.
func ComputeHash(objectType ObjectType, payload []byte) (ObjectID, error) {
	id, _, err := Encode(objectType, payload)
	return id, err
}

// Header returns the record header "<type> <size>\0".
func Header(objectType ObjectType, size int) string {
	return fmt.Sprintf("%s %d\x00", objectType, size)
}

// Decode splits an encoded record into its type and payload.
func Decode(data []byte) (ObjectType, []byte, error) {
	window := data
	if len(window) > constants.MaxHeaderLength {
		window = window[:constants.MaxHeaderLength]
	}

	nullByteIndex := bytes.IndexByte(window, constants.NullByte)
	if nullByteIndex == -1 {
		return "", nil, fmt.Errorf("%w: no null byte in header", ErrCorruptObject)
	}

	header := data[:nullByteIndex]
	spaceIndex := bytes.IndexByte(header, ' ')
	if spaceIndex == -1 {
		return "", nil, fmt.Errorf("%w: header %q has no size field", ErrCorruptObject, header)
	}

	objectType := ObjectType(header[:spaceIndex])
	if !objectType.IsValid() {
		return "", nil, fmt.Errorf("%w: unknown object type %q", ErrCorruptObject, objectType)
	}

	size, err := parseSize(header[spaceIndex+1:])
	if err != nil {
		return "", nil, err
	}

	payload := data[nullByteIndex+1:]
	if uint64(len(payload)) < size {
		return "", nil, fmt.Errorf("%w: truncated %s, declared %d bytes, found %d", ErrCorruptObject, objectType, size, len(payload))
	}
	if uint64(len(payload)) > size {
		return "", nil, fmt.Errorf("%w: %s has %d bytes past declared size %d", ErrCorruptObject, objectType, uint64(len(payload))-size, size)
	}

	return objectType, payload, nil
}

// parseSize accepts plain decimal digits only; strconv alone would allow a sign.
func parseSize(field []byte) (uint64, error) {
	if len(field) == 0 {
		return 0, fmt.Errorf("%w: empty size field", ErrCorruptObject)
	}
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: size %q is not decimal", ErrCorruptObject, field)
		}
	}
	size, err := strconv.ParseUint(string(field), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %v", ErrCorruptObject, field, err)
	}
	return size, nil
}
