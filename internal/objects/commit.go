package objects

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

// Represents commit author/committer
type Author struct {
	Name      string
	Email     string
	Timestamp time.Time
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>",
		a.Name,
		a.Email)
}

// signature renders "<name> <<email>> <unix> <±HHMM>".
func (a Author) signature() string {
	_, timeZoneOffset := a.Timestamp.Zone()
	return fmt.Sprintf("%s <%s> %d %s", a.Name, a.Email, a.Timestamp.Unix(), calculateTimezone(timeZoneOffset))
}

// Represents a snapshot of the repository
type Commit struct {
	id        ObjectID
	treeID    ObjectID
	parentIDs []ObjectID
	author    Author
	committer Author
	message   string
	raw       []byte
}

func NewCommit(treeID ObjectID, parentIDs []ObjectID, message string, author Author) (*Commit, error) {
	commit := &Commit{
		treeID:    treeID,
		parentIDs: parentIDs,
		author:    author,
		committer: author,
		message:   message,
	}

	id, err := ComputeHash(CommitObjectType, commit.Content())
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for commit: %w", err)
	}
	commit.id = id

	return commit, nil
}

func NewInitialCommit(treeID ObjectID, message string, author Author) (*Commit, error) {
	return NewCommit(treeID, nil, message, author)
}

func buildCommitContent(c *Commit) []byte {
	var buf bytes.Buffer

	// Tree reference
	fmt.Fprintf(&buf, "%s%s\n", constants.CommitTreePrefix, c.treeID)

	for _, parentID := range c.parentIDs {
		fmt.Fprintf(&buf, "%s%s\n", constants.CommitParentPrefix, parentID)
	}

	// Author and commiter
	fmt.Fprintf(&buf, "%s%s\n", constants.CommitAuthorPrefix, c.author.signature())
	fmt.Fprintf(&buf, "%s%s\n", constants.CommitCommitterPrefix, c.committer.signature())

	// Blank line before message
	buf.WriteByte('\n')

	// Commit message
	buf.WriteString(c.message)

	// Ensure message ends in newLine
	if len(c.message) > 0 && c.message[len(c.message)-1] != '\n' {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// ParseCommit reads the tree and parent lines of a commit payload.
// Author lines and the message are kept verbatim in the raw content.
func ParseCommit(content []byte) (*Commit, error) {
	commit := &Commit{raw: content}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	haveTree := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			id, err := ParseObjectID(strings.TrimPrefix(line, constants.CommitTreePrefix))
			if err != nil {
				return nil, fmt.Errorf("%w: commit tree line: %v", ErrCorruptObject, err)
			}
			commit.treeID = id
			haveTree = true
		case strings.HasPrefix(line, constants.CommitParentPrefix):
			id, err := ParseObjectID(strings.TrimPrefix(line, constants.CommitParentPrefix))
			if err != nil {
				return nil, fmt.Errorf("%w: commit parent line: %v", ErrCorruptObject, err)
			}
			commit.parentIDs = append(commit.parentIDs, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	if !haveTree {
		return nil, fmt.Errorf("%w: commit has no tree line", ErrCorruptObject)
	}

	if idx := bytes.Index(content, []byte("\n\n")); idx != -1 {
		commit.message = string(content[idx+2:])
	}
	commit.id, _ = ComputeHash(CommitObjectType, content)
	return commit, nil
}

func calculateTimezone(offset int) string {
	// offset is in seconds, convert to ±HHMM format
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / constants.SecondsPerHour
	minutes := (offset % constants.SecondsPerHour) / constants.SecondsPerMinute

	return fmt.Sprintf("%c%02d%02d", sign, hours, minutes)
}

func (c *Commit) ID() ObjectID {
	return c.id
}

func (c *Commit) Hash() string {
	return c.id.String()
}

func (c *Commit) Type() ObjectType {
	return CommitObjectType
}

func (c *Commit) TreeID() ObjectID {
	return c.treeID
}

func (c *Commit) ParentIDs() []ObjectID {
	return c.parentIDs
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Content() []byte {
	if c.raw != nil {
		return c.raw
	}
	return buildCommitContent(c)
}

func (c *Commit) Size() int {
	return len(c.Content())
}

func (c *Commit) Header() string {
	return Header(CommitObjectType, c.Size())
}

func (c *Commit) Data() []byte {
	return append([]byte(c.Header()), c.Content()...)
}

func (c *Commit) IsInitialCommit() bool {
	return len(c.parentIDs) == 0
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parents: %d, author: %s, message: %q}",
		c.id, c.treeID, len(c.parentIDs), c.author.String(), c.message)
}
