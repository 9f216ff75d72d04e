package objects

// ObjectType names the kind of a stored object as it appears in the record header.
type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
	TagObjectType    ObjectType = "tag"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType, TagObjectType:
		return true
	default:
		return false
	}
}

func (ot ObjectType) String() string {
	return string(ot)
}

// Object represents any GoGit object that can be stored
// All GoGit objects (blobs, trees, commits) must implement this interface
type Object interface {
	// ID returns the SHA-1 of the encoded record
	ID() ObjectID

	// Type returns the object kind written in the header
	Type() ObjectType

	// Content returns the payload without header
	Content() []byte

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte
}

// RawObject is an object whose payload is kept as opaque bytes.
// Pack ingestion and cat-file use it for kinds that need no parsing.
type RawObject struct {
	objectType ObjectType
	content    []byte
	id         ObjectID
	data       []byte
}

func NewRawObject(objectType ObjectType, content []byte) (*RawObject, error) {
	id, data, err := Encode(objectType, content)
	if err != nil {
		return nil, err
	}
	return &RawObject{
		objectType: objectType,
		content:    content,
		id:         id,
		data:       data,
	}, nil
}

func (o *RawObject) ID() ObjectID {
	return o.id
}

func (o *RawObject) Type() ObjectType {
	return o.objectType
}

func (o *RawObject) Content() []byte {
	return o.content
}

func (o *RawObject) Data() []byte {
	return o.data
}

func (o *RawObject) Size() int {
	return len(o.content)
}
