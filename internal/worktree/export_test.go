package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/testutils"
	"github.com/stretchr/testify/require"
)

// setupStore creates a repository directory and returns it with its object store.
func setupStore(t *testing.T) (string, *objects.ObjectStore) {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithGogitDir(t)
	return repoPath, objects.NewObjectStore(filepath.Join(repoPath, constants.Gogit, constants.Objects))
}

// writeFile creates parent directories and writes content with perms.
func writeFile(t *testing.T, root, relPath, content string, perms os.FileMode) {
	t.Helper()

	fullPath := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), constants.DirPerms), "Failed to create parent of %s", relPath)
	require.NoError(t, os.WriteFile(fullPath, []byte(content), perms), "Failed to write %s", relPath)
	require.NoError(t, os.Chmod(fullPath, perms), "Failed to chmod %s", relPath)
}

// snapshot runs a Builder over dir and fails the test on error.
func snapshot(t *testing.T, store *objects.ObjectStore, ignorer Ignorer, dir string) objects.ObjectID {
	t.Helper()

	id, err := NewBuilder(store, ignorer).Snapshot(dir)
	require.NoError(t, err, "Snapshot failed")
	return id
}

// readTree loads a tree from store and fails the test on error.
func readTree(t *testing.T, store *objects.ObjectStore, id objects.ObjectID) *objects.Tree {
	t.Helper()

	tree, err := store.ReadTree(id.String())
	require.NoError(t, err, "Failed to read tree %s", id)
	return tree
}
