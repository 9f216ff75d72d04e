package objects

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "40000"  // Directory (tree), written without a leading zero
	ModeSubmodule   FileMode = "160000" // Git submodule
)

// legacyModeDirectory is the zero-padded directory mode some writers emit.
const legacyModeDirectory = "040000"

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeSymlink, ModeDirectory, ModeSubmodule:
		return true
	default:
		return false
	}
}

// Padded returns the six digit form printed by ls-tree.
func (m FileMode) Padded() string {
	if len(m) >= 6 {
		return string(m)
	}
	return strings.Repeat("0", 6-len(m)) + string(m)
}

// ObjectType returns the kind of object an entry with this mode points to.
func (m FileMode) ObjectType() ObjectType {
	switch m {
	case ModeDirectory:
		return TreeObjectType
	case ModeSubmodule:
		return CommitObjectType
	default:
		return BlobObjectType
	}
}

func parseFileMode(raw string) (FileMode, error) {
	if raw == legacyModeDirectory {
		return ModeDirectory, nil
	}
	mode := FileMode(raw)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid file mode: %s", raw)
	}
	return mode, nil
}

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	mode FileMode
	name string
	id   ObjectID
}

func NewTreeEntry(mode FileMode, name string, id ObjectID) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid file mode: %s", mode)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\x00") {
		return nil, fmt.Errorf("invalid tree entry name: %q", name)
	}
	return &TreeEntry{
		mode: mode,
		name: name,
		id:   id,
	}, nil
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) ID() ObjectID {
	return e.id
}

func (e *TreeEntry) Hash() string {
	return e.id.String()
}

func (treeEntry *TreeEntry) IsDirectory() bool {
	return treeEntry.mode == ModeDirectory
}

func (treeEntry *TreeEntry) IsExecutable() bool {
	return treeEntry.mode == ModeExecutable
}

// Tree represents a Git tree object (directory)
type Tree struct {
	entries []TreeEntry
	id      ObjectID
	raw     []byte // stored payload when parsed, nil when built
}

// NewTree creates a tree object from the list of Tree Entries
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	// GoGit requires entries to be sorted by name in ascending order
	entries := make([]TreeEntry, len(treeEntries))
	copy(entries, treeEntries)

	slices.SortStableFunc(entries, compareTreeEntries)

	for i := 1; i < len(entries); i++ {
		if entries[i].name == entries[i-1].name {
			return nil, fmt.Errorf("duplicate tree entry: %s", entries[i].name)
		}
	}

	id, err := ComputeHash(TreeObjectType, buildTreeContent(entries))
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for tree: %w", err)
	}

	return &Tree{
		entries: entries,
		id:      id,
	}, nil
}

// ParseTree decodes a tree payload, keeping entries in their stored order.
func ParseTree(content []byte) (*Tree, error) {
	var entries []TreeEntry
	rest := content

	for len(rest) > 0 {
		spaceIndex := bytes.IndexByte(rest, ' ')
		if spaceIndex == -1 {
			return nil, fmt.Errorf("%w: tree entry without mode separator", ErrCorruptObject)
		}
		mode, err := parseFileMode(string(rest[:spaceIndex]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
		}
		rest = rest[spaceIndex+1:]

		nullByteIndex := bytes.IndexByte(rest, constants.NullByte)
		if nullByteIndex == -1 {
			return nil, fmt.Errorf("%w: tree entry name not terminated", ErrCorruptObject)
		}
		name := string(rest[:nullByteIndex])
		rest = rest[nullByteIndex+1:]

		if len(rest) < constants.HashByteLength {
			return nil, fmt.Errorf("%w: tree entry %q has truncated hash", ErrCorruptObject, name)
		}
		id, _ := ObjectIDFromBytes(rest[:constants.HashByteLength])
		rest = rest[constants.HashByteLength:]

		entries = append(entries, TreeEntry{mode: mode, name: name, id: id})
	}

	id, _ := ComputeHash(TreeObjectType, content)
	return &Tree{
		entries: entries,
		id:      id,
		raw:     content,
	}, nil
}

// compareTreeEntries implements Git's tree entry sorting rules.
// Names are compared byte by byte over their common prefix. When one name
// is a prefix of the other, the shorter one continues with a virtual "/"
// if it is a directory and ends otherwise, and an ended name sorts first.
func compareTreeEntries(a, b TreeEntry) int {
	return CompareEntryNames(a.name, a.IsDirectory(), b.name, b.IsDirectory())
}

// CompareEntryNames orders two entry names the way tree records require.
func CompareEntryNames(nameA string, dirA bool, nameB string, dirB bool) int {
	common := min(len(nameA), len(nameB))
	for i := 0; i < common; i++ {
		if nameA[i] != nameB[i] {
			if nameA[i] < nameB[i] {
				return -1
			}
			return 1
		}
	}

	nextA := terminator(nameA, common, dirA)
	nextB := terminator(nameB, common, dirB)
	switch {
	case nextA < nextB:
		return -1
	case nextA > nextB:
		return 1
	default:
		return 0
	}
}

// terminator returns the byte at pos, a virtual '/' past the end of a
// directory name, or -1 past the end of any other name.
func terminator(name string, pos int, isDir bool) int {
	if pos < len(name) {
		return int(name[pos])
	}
	if isDir {
		return '/'
	}
	return -1
}

// buildTreeContent creates the raw tree content in GoGit format
// <mode> <name>\0<20-byte binary SHA> , ex:
// 100644 README.md\0[binary SHA for README blob]
// 100644 main.go\0[binary SHA for main.go blob]
// 40000 src\0[binary SHA for src/ tree]
func buildTreeContent(entries []TreeEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		buf.WriteString(string(entry.Mode()))
		buf.WriteByte(' ')
		buf.WriteString(entry.Name())
		buf.WriteByte(constants.NullByte)
		buf.Write(entry.id.Bytes())
	}

	return buf.Bytes()
}

func (t *Tree) ID() ObjectID {
	return t.id
}

// Hash returns the SHA-1 hash of the tree
func (t *Tree) Hash() string {
	return t.id.String()
}

func (t *Tree) Type() ObjectType {
	return TreeObjectType
}

// Entries returns all tree entries
func (t *Tree) Entries() []TreeEntry {
	return t.entries
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(t.Content())
}

// Content returns the raw tree content
func (t *Tree) Content() []byte {
	if t.raw != nil {
		return t.raw
	}
	return buildTreeContent(t.entries)
}

// Header returns the Git object header
func (t *Tree) Header() string {
	return Header(TreeObjectType, t.Size())
}

func (t *Tree) Data() []byte {
	header := t.Header()
	data := append([]byte(header), t.Content()...)
	return data
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.id, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	for _, entry := range t.entries {
		if entry.Name() == name {
			return &entry, true
		}
	}
	return nil, false
}
