package objects

import (
	"os"
	"testing"
	"time"

	"github.com/KostasZigo/gogit-sync/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustParseID parses a hex hash and fails the test on error.
func mustParseID(t *testing.T, hash string) ObjectID {
	t.Helper()

	id, err := ParseObjectID(hash)
	require.NoError(t, err, "Failed to parse object id %q", hash)

	return id
}

// randomID returns a random object id.
func randomID(t *testing.T) ObjectID {
	t.Helper()
	return mustParseID(t, testutils.RandomHash())
}

// createTreeEntry creates tree entry and fails test on error.
func createTreeEntry(t *testing.T, mode FileMode, name string, id ObjectID) TreeEntry {
	t.Helper()

	entry, err := NewTreeEntry(mode, name, id)
	require.NoError(t, err, "Failed to create tree entry")

	return *entry
}

// createTree creates tree from entries and fails test on error.
func createTree(t *testing.T, entries []TreeEntry) *Tree {
	t.Helper()

	tree, err := NewTree(entries)
	require.NoError(t, err, "Failed to create tree")

	return tree
}

// assertTreeEntryEqual verifies two tree entries match.
func assertTreeEntryEqual(t *testing.T, actual, expected TreeEntry) {
	t.Helper()

	assert.Equal(t, expected.Name(), actual.Name(), "Entry name mismatch")
	assert.Equal(t, expected.ID(), actual.ID(), "Entry hash mismatch")
	assert.Equal(t, expected.Mode(), actual.Mode(), "Entry mode mismatch")
}

// assertEntryNames verifies tree entries appear in exactly the given order.
func assertEntryNames(t *testing.T, tree *Tree, names ...string) {
	t.Helper()

	entries := tree.Entries()
	require.Len(t, entries, len(names))
	for i, name := range names {
		assert.Equal(t, name, entries[i].Name(), "Entry %d", i)
	}
}

// createTestAuthor returns test author with UTC timezone.
func createTestAuthor(name, email string) Author {
	return Author{
		Name:      name,
		Email:     email,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

// newTestStore returns a store rooted in a fresh temporary directory.
func newTestStore(t *testing.T) *ObjectStore {
	t.Helper()
	return NewObjectStore(t.TempDir())
}

// storeObject stores an object and fails the test on error.
func storeObject(t *testing.T, store *ObjectStore, object Object) {
	t.Helper()

	require.NoError(t, store.Store(object), "Failed to store %s", object.Type())
}

// countObjectFiles returns the number of object files under the store root.
func countObjectFiles(t *testing.T, store *ObjectStore) int {
	t.Helper()

	dirs, err := os.ReadDir(store.Root())
	require.NoError(t, err, "Failed to read store root")

	count := 0
	for _, dir := range dirs {
		files, err := os.ReadDir(store.Root() + string(os.PathSeparator) + dir.Name())
		require.NoError(t, err, "Failed to read %s", dir.Name())
		count += len(files)
	}
	return count
}
