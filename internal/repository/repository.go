package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

func InitRepository(path string) error {
	// Resolves and adds OS specific separator
	gogitDir := filepath.Join(path, constants.Gogit)

	if err := checkRepositoryDoesNotExist(gogitDir); err != nil {
		return err
	}

	// Track if initialization of gogit directories and files was successful
	// Default value: false
	var initSuccess bool

	// Defer a func to clean up any directories/files in the case that
	// repository initialization failed (not all directories/files were created successfully).
	// If all resources got created successfully initSuccess is true, and the clean-up
	//  is not executed
	defer func() {
		if !initSuccess {
			cleanupRepository(gogitDir)
		}
	}()

	directories := []string{
		gogitDir,
		filepath.Join(gogitDir, constants.Objects),
		filepath.Join(gogitDir, constants.Refs),
		filepath.Join(gogitDir, constants.Refs, constants.Heads),
		filepath.Join(gogitDir, constants.Refs, constants.Tags),
	}

	// Create all gogit directories
	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	// Create HEAD file pointing to main branch
	if err := WriteHEAD(path, constants.DefaultBranch); err != nil {
		return err
	}

	initSuccess = true
	return nil
}

// GogitDir returns the metadata directory of the repository at path.
func GogitDir(path string) string {
	return filepath.Join(path, constants.Gogit)
}

// ObjectsDir returns the object store root of the repository at path.
func ObjectsDir(path string) string {
	return filepath.Join(path, constants.Gogit, constants.Objects)
}

// FindRoot locates the repository containing start by walking up the directory tree.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		gogitPath := filepath.Join(dir, constants.Gogit)
		if info, err := os.Stat(gogitPath); err == nil && info.IsDir() {
			return dir, nil
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding .gogit
			return "", fmt.Errorf("%s directory not found", constants.Gogit)
		}
		dir = parent
	}
}

// WriteHEAD points HEAD at refs/heads/<branch>.
func WriteHEAD(path, branch string) error {
	headFile := filepath.Join(path, constants.Gogit, constants.Head)
	headContent := constants.DefaultRefPrefix + branch + "\n"

	if err := os.WriteFile(headFile, []byte(headContent), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to create %s file: %w", constants.Head, err)
	}
	return nil
}

// ReadHEAD returns the branch HEAD points at.
func ReadHEAD(path string) (string, error) {
	content, err := os.ReadFile(filepath.Join(path, constants.Gogit, constants.Head))
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", constants.Head, err)
	}

	line := strings.TrimSpace(string(content))
	if !strings.HasPrefix(line, constants.DefaultRefPrefix) {
		return "", fmt.Errorf("%s is not a branch reference: %q", constants.Head, line)
	}
	return strings.TrimPrefix(line, constants.DefaultRefPrefix), nil
}

// UpdateRef writes hash to a ref file such as refs/heads/main.
func UpdateRef(path, refName, hash string) error {
	if !strings.HasPrefix(refName, constants.Refs+"/") || strings.Contains(refName, "..") {
		return fmt.Errorf("invalid ref name: %q", refName)
	}

	refFile := filepath.Join(path, constants.Gogit, filepath.FromSlash(refName))
	if err := os.MkdirAll(filepath.Dir(refFile), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", refName, err)
	}

	if err := os.WriteFile(refFile, []byte(hash+"\n"), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write ref %s: %w", refName, err)
	}

	slog.Debug("Updated ref", "ref", refName, "hash", hash)
	return nil
}

// ResolveRef reads the hash stored in a ref file.
func ResolveRef(path, refName string) (string, error) {
	content, err := os.ReadFile(filepath.Join(path, constants.Gogit, filepath.FromSlash(refName)))
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", refName, err)
	}
	return strings.TrimSpace(string(content)), nil
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("repository already exists at %s", path)
}

// Removes the entire .gogit directory if it exists
func cleanupRepository(gogitDir string) {
	if _, err := os.Stat(gogitDir); err == nil {
		slog.Debug("Cleaning up partial repository initialization",
			"path", gogitDir)

		if err := os.RemoveAll(gogitDir); err != nil {
			slog.Warn("Failed to cleanup repository directory",
				"path", gogitDir,
				"error", err)
		} else {
			slog.Debug("Successfully cleaned up repository directory",
				"path", gogitDir)
		}
	}
}

// Remove deletes the metadata directory of the repository at path.
// Used to roll back a clone that failed after initialization.
func Remove(path string) {
	cleanupRepository(GogitDir(path))
}
