package worktree

import (
	"testing"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternIgnorer(t *testing.T) {
	ignorer, err := NewPatternIgnorer([]string{
		"# comment",
		"",
		"*.log",
		"build/",
		"docs/*.tmp",
	})
	require.NoError(t, err, "Failed to create ignorer")

	tests := []struct {
		relPath  string
		isDir    bool
		expected bool
	}{
		{"debug.log", false, true},
		{"nested/debug.log", false, true},
		{"build", true, true},
		{"build", false, false},
		{"src/build", true, true},
		{"docs/a.tmp", false, true},
		{"other/docs/a.tmp", false, false},
		{"a.tmp", false, false},
		{"main.go", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ignorer.Ignored(tt.relPath, tt.isDir), "Ignored(%q, dir=%v)", tt.relPath, tt.isDir)
	}
}

func TestNewPatternIgnorer_InvalidPattern(t *testing.T) {
	_, err := NewPatternIgnorer([]string{"[unterminated"})
	require.Error(t, err, "Expected error for malformed pattern")
}

func TestLoadIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, constants.IgnoreFile, "*.log\n# comment\nbuild/\n", constants.FilePerms)

	ignorer, err := LoadIgnoreFile(root)
	require.NoError(t, err, "LoadIgnoreFile failed")

	assert.True(t, ignorer.Ignored("x.log", false), "Expected x.log to be ignored")
	assert.False(t, ignorer.Ignored(constants.IgnoreFile, false), "Expected %s itself to be kept", constants.IgnoreFile)
}

func TestLoadIgnoreFile_Missing(t *testing.T) {
	ignorer, err := LoadIgnoreFile(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ignorer.Ignored("anything", false), "Expected empty ignorer to keep everything")
}

func TestNoIgnore(t *testing.T) {
	assert.False(t, NoIgnore{}.Ignored("debug.log", false), "Expected NoIgnore to keep everything")
}
