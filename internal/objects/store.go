package objects

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/klauspost/compress/zlib"
)

// ObjectStore manages storage of Git objects under a single root directory.
// Layout: <root>/<first 2 hex chars>/<remaining 38 hex chars>
type ObjectStore struct {
	root string
}

// NewObjectStore returns a store rooted at root (usually <repo>/.gogit/objects).
func NewObjectStore(root string) *ObjectStore {
	return &ObjectStore{
		root: root,
	}
}

// Root returns the objects directory.
func (store *ObjectStore) Root() string {
	return store.root
}

// Path returns the file that holds the object with the given id.
func (store *ObjectStore) Path(id ObjectID) string {
	hash := id.String()
	return filepath.Join(store.root, hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// Store saves an object to <root>/<first 2 chars>/<rest>
// Returns nil if object already exists
func (store *ObjectStore) Store(object Object) error {
	_, err := store.Put(object.Data())
	return err
}

// Put compresses an encoded record and writes it under its hash.
// Writing an id that already exists is a no-op since equal ids mean equal bytes.
func (store *ObjectStore) Put(data []byte) (ObjectID, error) {
	id := HashData(data)
	objectFile := store.Path(id)
	objectDir := filepath.Dir(objectFile)

	// Check if object already exists (content-addressable)
	_, err := os.Stat(objectFile)
	if err == nil {
		slog.Debug("Object with this hash already exists",
			"hash", id)
		return id, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return id, err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(objectDir, constants.DirPerms); err != nil {
		return id, fmt.Errorf("failed to create object directory: %w", err)
	}

	compressedData, err := compress(data)
	if err != nil {
		return id, fmt.Errorf("failed to compress object: %w", err)
	}

	// Write next to the final path and rename so readers never see a partial file
	tmpFile, err := os.CreateTemp(objectDir, "tmp-obj-*")
	if err != nil {
		return id, fmt.Errorf("failed to create temporary object file: %w", err)
	}
	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(compressedData); err != nil {
		tmpFile.Close()
		os.Remove(tmpName)
		return id, fmt.Errorf("failed to write object file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpName)
		return id, fmt.Errorf("failed to write object file: %w", err)
	}
	if err := os.Chmod(tmpName, constants.FilePerms); err != nil {
		os.Remove(tmpName)
		return id, fmt.Errorf("failed to set object file permissions: %w", err)
	}
	if err := os.Rename(tmpName, objectFile); err != nil {
		os.Remove(tmpName)
		return id, fmt.Errorf("failed to write object file: %w", err)
	}

	slog.Debug("Stored object", "hash", id, "size", len(data))
	return id, nil
}

func compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	// Crete a new writer that compresses and writes data to the buffer
	writer, err := zlib.NewWriterLevel(&buffer, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	// Call Close in order to flush any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Get returns the decompressed encoded record for hash.
func (store *ObjectStore) Get(hash string) ([]byte, error) {
	id, err := ParseObjectID(hash)
	if err != nil {
		return nil, err
	}

	compressedData, err := os.ReadFile(store.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object file %s: %w", id, err)
	}

	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptObject, id, err)
	}
	defer reader.Close()

	var buffer bytes.Buffer
	if _, err := buffer.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decompress: %v", ErrCorruptObject, id, err)
	}

	return buffer.Bytes(), nil
}

// Read loads, decodes and verifies an object.
func (store *ObjectStore) Read(hash string) (ObjectType, []byte, error) {
	data, err := store.Get(hash)
	if err != nil {
		return "", nil, err
	}

	objectType, content, err := Decode(data)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w", hash, err)
	}

	// Get already validated the hash
	expected, _ := ParseObjectID(hash)
	if actual := HashData(data); actual != expected {
		return "", nil, fmt.Errorf("%w: hash mismatch: expected %s, got %s", ErrCorruptObject, expected, actual)
	}

	return objectType, content, nil
}

// ReadBlob reads a blob object by hash.
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	content, err := store.readTyped(hash, BlobObjectType)
	if err != nil {
		return nil, err
	}
	return NewBlob(content), nil
}

// ReadTree reads and parses a tree object by hash.
func (store *ObjectStore) ReadTree(hash string) (*Tree, error) {
	content, err := store.readTyped(hash, TreeObjectType)
	if err != nil {
		return nil, err
	}
	tree, err := ParseTree(content)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", hash, err)
	}
	return tree, nil
}

// ReadCommit reads and parses a commit object by hash.
func (store *ObjectStore) ReadCommit(hash string) (*Commit, error) {
	content, err := store.readTyped(hash, CommitObjectType)
	if err != nil {
		return nil, err
	}
	commit, err := ParseCommit(content)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", hash, err)
	}
	return commit, nil
}

func (store *ObjectStore) readTyped(hash string, want ObjectType) ([]byte, error) {
	objectType, content, err := store.Read(hash)
	if err != nil {
		return nil, err
	}
	if objectType != want {
		return nil, fmt.Errorf("object %s is a %s, not a %s", hash, objectType, want)
	}
	return content, nil
}

// Exists checks if an object exists in storage
func (store *ObjectStore) Exists(hash string) bool {
	id, err := ParseObjectID(hash)
	if err != nil {
		return false
	}
	_, err = os.Stat(store.Path(id))
	return err == nil
}
