package worktree

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
)

// Builder snapshots a directory into tree and blob objects.
type Builder struct {
	store   *objects.ObjectStore
	ignorer Ignorer
}

// NewBuilder returns a Builder writing into store. A nil ignorer keeps everything
// except the repository metadata directory.
func NewBuilder(store *objects.ObjectStore, ignorer Ignorer) *Builder {
	if ignorer == nil {
		ignorer = NoIgnore{}
	}
	return &Builder{
		store:   store,
		ignorer: ignorer,
	}
}

// Snapshot writes every blob and tree under rootDir and returns the root tree id.
func (b *Builder) Snapshot(rootDir string) (objects.ObjectID, error) {
	tree, err := b.buildTree(rootDir, "")
	if err != nil {
		return objects.ObjectID{}, err
	}

	// The root tree is stored even when empty
	if err := b.store.Store(tree); err != nil {
		return objects.ObjectID{}, fmt.Errorf("failed to store tree for %s: %w", rootDir, err)
	}
	return tree.ID(), nil
}

// buildTree recurses once per directory level. Subtrees are stored by the
// caller's loop only when they are non-empty.
func (b *Builder) buildTree(dir, relDir string) (*objects.Tree, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var entries []objects.TreeEntry
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if name == constants.Gogit {
			continue
		}

		fullPath := filepath.Join(dir, name)
		relPath := path.Join(relDir, name)
		entryType := dirEntry.Type()

		if b.ignorer.Ignored(relPath, entryType.IsDir()) {
			slog.Debug("Ignoring path", "path", relPath)
			continue
		}

		var mode objects.FileMode
		var id objects.ObjectID

		switch {
		case entryType.IsDir():
			subtree, err := b.buildTree(fullPath, relPath)
			if err != nil {
				return nil, err
			}
			if len(subtree.Entries()) == 0 {
				slog.Debug("Skipping empty directory", "path", relPath)
				continue
			}
			if err := b.store.Store(subtree); err != nil {
				return nil, fmt.Errorf("failed to store tree for %s: %w", fullPath, err)
			}
			mode, id = objects.ModeDirectory, subtree.ID()

		case entryType&fs.ModeSymlink != 0:
			blob, err := objects.NewBlobFromSymlink(fullPath)
			if err != nil {
				return nil, err
			}
			if err := b.store.Store(blob); err != nil {
				return nil, fmt.Errorf("failed to store blob for %s: %w", fullPath, err)
			}
			mode, id = objects.ModeSymlink, blob.ID()

		case entryType.IsRegular():
			info, err := dirEntry.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", fullPath, err)
			}
			blob, err := objects.NewBlobFromFile(fullPath)
			if err != nil {
				return nil, err
			}
			if err := b.store.Store(blob); err != nil {
				return nil, fmt.Errorf("failed to store blob for %s: %w", fullPath, err)
			}
			mode, id = fileMode(info.Mode()), blob.ID()

		default:
			slog.Debug("Skipping special file", "path", relPath, "mode", entryType.String())
			continue
		}

		entry, err := objects.NewTreeEntry(mode, name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to create tree entry for %s: %w", fullPath, err)
		}
		entries = append(entries, *entry)
	}

	tree, err := objects.NewTree(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree for %s: %w", dir, err)
	}
	return tree, nil
}

// fileMode maps permission bits to a tree mode: any exec bit makes a file executable.
func fileMode(mode fs.FileMode) objects.FileMode {
	if mode.Perm()&0o111 != 0 {
		return objects.ModeExecutable
	}
	return objects.ModeRegularFile
}
