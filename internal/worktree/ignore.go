package worktree

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

// Ignorer decides whether a path relative to the snapshot root is left out.
// relPath always uses forward slashes.
type Ignorer interface {
	Ignored(relPath string, isDir bool) bool
}

// NoIgnore keeps every entry.
type NoIgnore struct{}

func (NoIgnore) Ignored(string, bool) bool { return false }

// ignorePattern is one parsed line. Anchored patterns contain a slash and
// match the whole relative path instead of the base name.
type ignorePattern struct {
	glob     string
	dirOnly  bool
	anchored bool
}

// PatternIgnorer matches glob patterns in the style of a .gitignore file.
// Negation and "**" are not supported.
type PatternIgnorer struct {
	patterns []ignorePattern
}

// NewPatternIgnorer builds an ignorer from pattern lines.
func NewPatternIgnorer(lines []string) (*PatternIgnorer, error) {
	ignorer := &PatternIgnorer{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern := ignorePattern{}
		if strings.HasSuffix(line, "/") {
			pattern.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.Contains(line, "/") {
			pattern.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if _, err := path.Match(line, ""); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", line, err)
		}
		pattern.glob = line
		ignorer.patterns = append(ignorer.patterns, pattern)
	}
	return ignorer, nil
}

// LoadIgnoreFile reads <root>/.gogitignore. A missing file yields an empty ignorer.
func LoadIgnoreFile(root string) (*PatternIgnorer, error) {
	file, err := os.Open(filepath.Join(root, constants.IgnoreFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &PatternIgnorer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", constants.IgnoreFile, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", constants.IgnoreFile, err)
	}

	return NewPatternIgnorer(lines)
}

func (p *PatternIgnorer) Ignored(relPath string, isDir bool) bool {
	base := path.Base(relPath)
	for _, pattern := range p.patterns {
		if pattern.dirOnly && !isDir {
			continue
		}
		target := base
		if pattern.anchored {
			target = relPath
		}
		if matched, _ := path.Match(pattern.glob, target); matched {
			return true
		}
	}
	return false
}
