package objects

import (
	"fmt"
	"os"
)

type Blob struct {
	content []byte
	id      ObjectID
}

func NewBlob(content []byte) *Blob {
	id, _ := ComputeHash(BlobObjectType, content)
	return &Blob{
		content: content,
		id:      id,
	}
}

func NewBlobFromFile(filepath string) (*Blob, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return NewBlob(content), nil
}

// NewBlobFromSymlink stores the link target as the blob payload.
func NewBlobFromSymlink(linkPath string) (*Blob, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read symlink %s: %w", linkPath, err)
	}
	return NewBlob([]byte(target)), nil
}

func (b *Blob) ID() ObjectID {
	return b.id
}

func (b *Blob) Hash() string {
	return b.id.String()
}

func (b *Blob) Type() ObjectType {
	return BlobObjectType
}

func (b *Blob) Content() []byte {
	return b.content
}

func (b *Blob) Size() int {
	return len(b.content)
}

func (b *Blob) Header() string {
	return Header(BlobObjectType, b.Size())
}

func (b *Blob) Data() []byte {
	header := b.Header()
	data := append([]byte(header), b.Content()...)
	return data
}

func (b *Blob) String() string {
	return fmt.Sprintf("Blob{hash: %s, size: %d bytes}", b.id, b.Size())
}
