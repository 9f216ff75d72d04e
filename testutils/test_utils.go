package testutils

import (
	"crypto/rand"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RandomString generates a random hex string of n bytes
func RandomString(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// RandomHash generates a random 40-character SHA-1 hash
func RandomHash() string {
	return RandomString(constants.HashByteLength)
}

// SetupTestRepoWithGogitDir creates a temporary directory with .gogit/objects structure.
// This is useful for tests that need the repository structure but not full initialization.
func SetupTestRepoWithGogitDir(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	gogitDir := filepath.Join(repoPath, constants.Gogit, constants.Objects)

	require.NoError(t, os.MkdirAll(gogitDir, constants.DirPerms),
		"Failed to create %s/%s", constants.Gogit, constants.Objects)

	return repoPath
}

// SetupTestRepoWithInit creates a fully initialized .gogit repository structure.
// This includes objects/, refs/heads/, refs/tags/, and HEAD file.
func SetupTestRepoWithInit(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	gogitDir := filepath.Join(repoPath, constants.Gogit)

	// Create directory structure
	dirs := []string{
		filepath.Join(gogitDir, constants.Objects),
		filepath.Join(gogitDir, constants.Refs, constants.Heads),
		filepath.Join(gogitDir, constants.Refs, constants.Tags),
	}

	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(dir, constants.DirPerms), "Failed to create directory %s", dir)
	}

	// Create HEAD file
	headPath := filepath.Join(gogitDir, constants.Head)
	headContent := []byte(constants.DefaultRefPrefix + constants.DefaultBranch + "\n")
	require.NoError(t, os.WriteFile(headPath, headContent, constants.FilePerms),
		"Failed to create %s file", constants.Head)

	return repoPath
}

// CreateTestFile creates a file with given content in the specified directory.
// Returns the full path to the created file.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(filePath, content, constants.FilePerms),
		"Failed to create test file %s", filename)

	return filePath
}

// AssertFileExists checks that a file exists at the given path.
// Fails the test if the file doesn't exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.NoError(t, err, "Expected file to exist at %s", path)
}

// AssertFileNotExists checks that nothing, file or directory, exists at the
// given path. Fails the test otherwise.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist, "Expected file to NOT exist at %s", path)
}

// AssertDirExists checks that a directory exists at the given path.
// Fails the test if the directory doesn't exist.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	assert.DirExists(t, path)
}

// AssertRepositoryStructure validates complete .gogit directory structure.
// Verifies objects/, refs/heads/, refs/tags/ exist and HEAD contains correct branch reference.
// Fatal error if any validation fails.
func AssertRepositoryStructure(t *testing.T, repoPath string) {
	t.Helper()

	gogitDir := filepath.Join(repoPath, constants.Gogit)
	AssertDirExists(t, gogitDir)

	expectedDirs := []string{
		constants.Objects,
		constants.Refs,
		filepath.Join(constants.Refs, constants.Heads),
		filepath.Join(constants.Refs, constants.Tags),
	}
	for _, dir := range expectedDirs {
		AssertDirExists(t, filepath.Join(gogitDir, dir))
	}

	headPath := filepath.Join(gogitDir, constants.Head)
	AssertFileExists(t, headPath)

	content, err := os.ReadFile(headPath)
	require.NoError(t, err, "Failed to read %s file", constants.Head)

	expectedContent := constants.DefaultRefPrefix + constants.DefaultBranch + "\n"
	assert.Equal(t, expectedContent, string(content), "%s content", constants.Head)
}
