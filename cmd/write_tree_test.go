package cmd

import (
	"fmt"
	"testing"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/repository"
	"github.com/KostasZigo/gogit-sync/testutils"
	"github.com/agiledragon/gomonkey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteTreeCommand_EmptyRepository verifies the well-known empty tree hash.
func TestWriteTreeCommand_EmptyRepository(t *testing.T) {
	initTestRepo(t)

	out := mustRunCommand(t, writeTreeCmd)
	assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904", out)
}

// TestWriteTreeCommand_StoresObjects verifies every blob and the root tree are stored.
func TestWriteTreeCommand_StoresObjects(t *testing.T) {
	repoPath := initTestRepo(t)

	content := []byte("Pikachu uses Thunderbolt\n")
	testutils.CreateTestFile(t, repoPath, "pikachu.txt", content)

	treeHash := mustRunCommand(t, writeTreeCmd)

	store := objects.NewObjectStore(repository.ObjectsDir(repoPath))
	assert.True(t, store.Exists(treeHash), "Expected tree %s to be stored", treeHash)
	assert.True(t, store.Exists(blobHash(t, content)), "Expected blob to be stored")
}

// TestWriteTreeCommand_Deterministic verifies identical content yields the same hash.
func TestWriteTreeCommand_Deterministic(t *testing.T) {
	repoPath := initTestRepo(t)
	testutils.CreateTestFile(t, repoPath, "same.txt", []byte("same\n"))

	first := mustRunCommand(t, writeTreeCmd)
	second := mustRunCommand(t, writeTreeCmd)
	assert.Equal(t, first, second, "Expected identical hashes")
}

// TestWriteTreeCommand_IgnoreFile verifies .gogitignore patterns are honoured.
func TestWriteTreeCommand_IgnoreFile(t *testing.T) {
	repoPath := initTestRepo(t)

	testutils.CreateTestFile(t, repoPath, "keep.txt", []byte("keep\n"))
	testutils.CreateTestFile(t, repoPath, "debug.log", []byte("noise\n"))
	testutils.CreateTestFile(t, repoPath, constants.IgnoreFile, []byte("*.log\n"))

	treeHash := mustRunCommand(t, writeTreeCmd)
	names := mustRunCommand(t, lsTreeCmd, "--name-only", treeHash)

	assert.Equal(t, constants.IgnoreFile+"\nkeep.txt", names)
}

// TestWriteTreeCommand_TooManyArguments verifies argument validation.
func TestWriteTreeCommand_TooManyArguments(t *testing.T) {
	_, err := runCommand(t, writeTreeCmd, "extra")
	require.Error(t, err, "Expected error for positional argument")

	expected := fmt.Sprintf("%s command accepts no arguments, received 1", constants.WriteTreeCmdName)
	assert.Contains(t, err.Error(), expected)
}

// TestWriteTreeCommand_StoreFailure verifies storage errors are reported.
func TestWriteTreeCommand_StoreFailure(t *testing.T) {
	repoPath := initTestRepo(t)
	testutils.CreateTestFile(t, repoPath, "file.txt", []byte("content\n"))

	patches := gomonkey.ApplyMethod(&objects.ObjectStore{}, "Put",
		func(_ *objects.ObjectStore, _ []byte) (objects.ObjectID, error) {
			return objects.ZeroID, fmt.Errorf("disk full")
		})
	defer patches.Reset()

	_, err := runCommand(t, writeTreeCmd)
	assert.ErrorContains(t, err, "failed to write tree")
}
