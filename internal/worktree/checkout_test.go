package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_RoundTrip(t *testing.T) {
	repoPath, store := setupStore(t)
	writeFile(t, repoPath, "README.md", "# readme\n", constants.FilePerms)
	writeFile(t, repoPath, "bin/run.sh", "#!/bin/sh\necho hi\n", constants.ExecPerms)
	writeFile(t, repoPath, "src/pkg/lib.go", "package pkg\n", constants.FilePerms)

	treeID := snapshot(t, store, nil, repoPath)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, Checkout(store, treeID, target), "Checkout failed")

	content, err := os.ReadFile(filepath.Join(target, "src", "pkg", "lib.go"))
	require.NoError(t, err, "Expected checked out file")
	assert.Equal(t, "package pkg\n", string(content))

	info, err := os.Stat(filepath.Join(target, "bin", "run.sh"))
	require.NoError(t, err, "Expected executable file")
	assert.NotZero(t, info.Mode().Perm()&0o111, "Expected run.sh to be executable")

	// Snapshotting the checkout must reproduce the same tree
	assert.Equal(t, treeID, snapshot(t, store, nil, target))
}

func TestCheckout_Symlink(t *testing.T) {
	_, store := setupStore(t)

	link := objects.NewBlob([]byte("target.txt"))
	require.NoError(t, store.Store(link), "Failed to store blob")
	entry, err := objects.NewTreeEntry(objects.ModeSymlink, "link", link.ID())
	require.NoError(t, err, "Failed to create entry")
	tree, err := objects.NewTree([]objects.TreeEntry{*entry})
	require.NoError(t, err, "Failed to create tree")
	require.NoError(t, store.Store(tree), "Failed to store tree")

	target := t.TempDir()
	require.NoError(t, Checkout(store, tree.ID(), target), "Checkout failed")

	dest, err := os.Readlink(filepath.Join(target, "link"))
	require.NoError(t, err, "Expected symlink")
	assert.Equal(t, "target.txt", dest)
}

func TestCheckout_MissingTree(t *testing.T) {
	_, store := setupStore(t)

	missing := objects.NewBlob([]byte("never stored")).ID()
	err := Checkout(store, missing, t.TempDir())
	require.ErrorIs(t, err, objects.ErrNotFound)
}

func TestCheckout_RejectsMetadataName(t *testing.T) {
	_, store := setupStore(t)

	blob := objects.NewBlob([]byte("evil"))
	require.NoError(t, store.Store(blob), "Failed to store blob")

	// Built by hand since tree entry validation only guards separators
	content := append([]byte("100644 "+constants.Gogit+"\x00"), blob.ID().Bytes()...)
	id, data, err := objects.Encode(objects.TreeObjectType, content)
	require.NoError(t, err, "Failed to encode tree")
	_, err = store.Put(data)
	require.NoError(t, err, "Failed to store tree")

	err = Checkout(store, id, t.TempDir())
	require.ErrorIs(t, err, objects.ErrCorruptObject)
}

// storeRawTree stores hand-built tree content, bypassing entry validation.
func storeRawTree(t *testing.T, store *objects.ObjectStore, entries ...[]byte) objects.ObjectID {
	t.Helper()

	var content []byte
	for _, entry := range entries {
		content = append(content, entry...)
	}
	id, data, err := objects.Encode(objects.TreeObjectType, content)
	require.NoError(t, err, "Failed to encode tree")
	_, err = store.Put(data)
	require.NoError(t, err, "Failed to store tree")
	return id
}

// rawEntry renders one "<mode> <name>\0<id>" tree record.
func rawEntry(mode objects.FileMode, name string, id objects.ObjectID) []byte {
	return append([]byte(string(mode)+" "+name+"\x00"), id.Bytes()...)
}

// storeBlob stores content and returns its id.
func storeBlob(t *testing.T, store *objects.ObjectStore, content string) objects.ObjectID {
	t.Helper()

	blob := objects.NewBlob([]byte(content))
	require.NoError(t, store.Store(blob), "Failed to store blob")
	return blob.ID()
}

func TestCheckout_DuplicateSymlinkAndDirectory(t *testing.T) {
	_, store := setupStore(t)
	outside := t.TempDir()

	linkID := storeBlob(t, store, outside)
	evilID := storeBlob(t, store, "escaped\n")
	subtreeID := storeRawTree(t, store, rawEntry(objects.ModeRegularFile, "evil.txt", evilID))
	rootID := storeRawTree(t, store,
		rawEntry(objects.ModeSymlink, "a", linkID),
		rawEntry(objects.ModeDirectory, "a", subtreeID),
	)

	err := Checkout(store, rootID, t.TempDir())
	require.ErrorIs(t, err, objects.ErrCorruptObject)
	testutils.AssertFileNotExists(t, filepath.Join(outside, "evil.txt"))
}

func TestCheckout_DuplicateSymlinkAndFile(t *testing.T) {
	_, store := setupStore(t)
	outside := filepath.Join(t.TempDir(), "victim.txt")

	linkID := storeBlob(t, store, outside)
	fileID := storeBlob(t, store, "overwritten\n")
	rootID := storeRawTree(t, store,
		rawEntry(objects.ModeSymlink, "a", linkID),
		rawEntry(objects.ModeRegularFile, "a", fileID),
	)

	err := Checkout(store, rootID, t.TempDir())
	require.ErrorIs(t, err, objects.ErrCorruptObject)
	testutils.AssertFileNotExists(t, outside)
}

func TestCheckout_RefusesExistingSymlink(t *testing.T) {
	_, store := setupStore(t)
	outside := t.TempDir()

	evilID := storeBlob(t, store, "escaped\n")
	subtreeID := storeRawTree(t, store, rawEntry(objects.ModeRegularFile, "evil.txt", evilID))
	rootID := storeRawTree(t, store,
		rawEntry(objects.ModeDirectory, "a", subtreeID),
		rawEntry(objects.ModeRegularFile, "b", evilID),
	)

	tests := []struct {
		name   string
		link   string
		linkTo string
		want   string
	}{
		{name: "directory", link: "a", linkTo: outside, want: filepath.Join(outside, "evil.txt")},
		{name: "file", link: "b", linkTo: filepath.Join(outside, "b-target"), want: filepath.Join(outside, "b-target")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := t.TempDir()
			require.NoError(t, os.Symlink(tt.linkTo, filepath.Join(target, tt.link)), "Failed to create symlink")

			err := Checkout(store, rootID, target)
			require.ErrorIs(t, err, ErrUnsafePath)
			testutils.AssertFileNotExists(t, tt.want)
		})
	}
}
