package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	CatFileCmdName    = "cat-file"
	LsTreeCmdName     = "ls-tree"
	WriteTreeCmdName  = "write-tree"
	CommitTreeCmdName = "commit-tree"
	CloneCmdName      = "clone"
)

// Repository directory and file names define the gogit metadata structure.
const (
	// Gogit is the repository metadata directory.
	Gogit = ".gogit"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// IgnoreFile lists glob patterns excluded from write-tree.
	IgnoreFile = ".gogitignore"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = "ref: refs/heads/"

	// BranchRefPrefix is the full ref name prefix for branches.
	BranchRefPrefix = "refs/heads/"

	// TagRefPrefix is the full ref name prefix for tags.
	TagRefPrefix = "refs/tags/"
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ExecPerms is used when checking out executable blobs (rwxr-xr-x).
	ExecPerms os.FileMode = 0755
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Commit metadata prefixes.
const (
	// CommitTreePrefix marks the tree line in commit objects.
	CommitTreePrefix = "tree "

	// CommitParentPrefix marks parent commit lines in commit objects.
	CommitParentPrefix = "parent "

	// CommitAuthorPrefix marks author metadata in commit objects.
	CommitAuthorPrefix = "author "

	// CommitCommitterPrefix marks committer metadata in commit objects.
	CommitCommitterPrefix = "committer "
)

// Object format constants.
const (
	// NullByte separates header from content in Git objects.
	NullByte = '\x00'

	// MaxHeaderLength bounds the "<type> <size>\0" header search.
	// "commit " plus a 20 digit size and the NUL fits comfortably.
	MaxHeaderLength = 32
)

// Smart HTTP protocol values.
const (
	// UploadPackService is the service name used for fetch and clone.
	UploadPackService = "git-upload-pack"

	// ProtocolV2Header requests protocol version 2 from the server.
	ProtocolV2Header = "version=2"

	// DefaultUserAgent identifies the client in the agent capability and User-Agent header.
	DefaultUserAgent = "gogit/1.0"
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)
