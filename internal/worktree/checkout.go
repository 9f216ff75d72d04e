package worktree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
)

// ErrUnsafePath is returned when checking out an entry would write through
// a symlink or otherwise leave the target directory.
var ErrUnsafePath = errors.New("unsafe path in work tree")

// Checkout writes the tree treeID and everything below it into dir.
// Existing files with the same names are overwritten.
func Checkout(store *objects.ObjectStore, treeID objects.ObjectID, dir string) error {
	if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return checkoutTree(store, treeID, dir)
}

func checkoutTree(store *objects.ObjectStore, treeID objects.ObjectID, dir string) error {
	tree, err := store.ReadTree(treeID.String())
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(tree.Entries()))
	for _, entry := range tree.Entries() {
		name := entry.Name()
		if !safeEntryName(name) {
			return fmt.Errorf("%w: unsafe path %q in tree %s", objects.ErrCorruptObject, name, treeID)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate entry %q in tree %s", objects.ErrCorruptObject, name, treeID)
		}
		seen[name] = true

		target := filepath.Join(dir, name)
		if entry.Mode() != objects.ModeSymlink {
			if err := rejectSymlink(target); err != nil {
				return err
			}
		}

		switch entry.Mode() {
		case objects.ModeDirectory:
			if err := os.MkdirAll(target, constants.DirPerms); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			if err := checkoutTree(store, entry.ID(), target); err != nil {
				return err
			}

		case objects.ModeRegularFile, objects.ModeExecutable:
			blob, err := store.ReadBlob(entry.Hash())
			if err != nil {
				return err
			}
			perms := constants.FilePerms
			if entry.IsExecutable() {
				perms = constants.ExecPerms
			}
			if err := os.WriteFile(target, blob.Content(), perms); err != nil {
				return fmt.Errorf("failed to write file %s: %w", target, err)
			}
			// WriteFile keeps the mode of an existing file
			if err := os.Chmod(target, perms); err != nil {
				return fmt.Errorf("failed to set permissions on %s: %w", target, err)
			}

		case objects.ModeSymlink:
			blob, err := store.ReadBlob(entry.Hash())
			if err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(string(blob.Content()), target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", target, err)
			}

		default:
			slog.Debug("Skipping unsupported tree entry", "path", target, "mode", entry.Mode())
		}
	}

	return nil
}

// rejectSymlink fails when target already exists as a symlink, so that
// directories and files are never created through one.
func rejectSymlink(target string) error {
	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", target, err)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s is a symlink", ErrUnsafePath, target)
	}
	return nil
}

// safeEntryName rejects names that would escape dir or clobber repository metadata.
func safeEntryName(name string) bool {
	if name == "" || name == "." || name == ".." || name == constants.Gogit {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
