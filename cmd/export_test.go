package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KostasZigo/gogit-sync/testutils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestRootCmd creates fresh root command with the given subcommand.
// Flag values left over from a previous Execute are reset first.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	resetFlags(cmd)
	testRootCmd := &cobra.Command{Use: "gogit"}
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

// resetFlags restores every local flag of cmd to its default and clears
// the Changed marker used by required and exclusive flag groups.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if slice, ok := flag.Value.(pflag.SliceValue); ok {
			slice.Replace(nil)
		} else {
			flag.Value.Set(flag.DefValue)
		}
		flag.Changed = false
	})
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// assertRepositoryStructure verifies .gogit directory structure and HEAD file.
func assertRepositoryStructure(t *testing.T, repoPath string) {
	t.Helper()

	gogitDir := filepath.Join(repoPath, ".gogit")
	testutils.AssertDirExists(t, gogitDir)

	expectedDirs := []string{"objects", "refs", "refs/heads", "refs/tags"}
	for _, dir := range expectedDirs {
		testutils.AssertDirExists(t, filepath.Join(gogitDir, dir))
	}

	headPath := filepath.Join(gogitDir, "HEAD")
	testutils.AssertFileExists(t, headPath)

	content, err := os.ReadFile(headPath)
	require.NoError(t, err, "Failed to read HEAD file")

	assert.Equal(t, "ref: refs/heads/main\n", string(content), "HEAD content")
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	require.NoError(t, err, "Failed to get current directory")

	require.NoError(t, os.Chdir(repoPath), "Failed to change to directory %s", repoPath)

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}

// initTestRepo creates an initialized repository and makes it the working directory.
func initTestRepo(t *testing.T) string {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)
	return repoPath
}

// runCommand executes cmd with args under a fresh root and returns stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	testRootCmd := createTestRootCmd(cmd)
	stdout := captureStdout(testRootCmd)
	captureStderr(testRootCmd)
	testRootCmd.SetArgs(append([]string{cmd.Name()}, args...))
	err := testRootCmd.Execute()
	return stdout.String(), err
}

// mustRunCommand is runCommand that fails the test on error and trims the output.
func mustRunCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	out, err := runCommand(t, cmd, args...)
	require.NoError(t, err, "%s %v failed", cmd.Name(), args)
	return strings.TrimSpace(out)
}
