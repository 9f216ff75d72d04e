// Package clone copies a remote repository over the smart HTTP protocol:
// reference discovery, a protocol v2 fetch, pack ingestion into the object
// store, then refs, HEAD and a checkout of the HEAD commit.
package clone

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/protocol"
	"github.com/KostasZigo/gogit-sync/internal/repository"
)

var (
	// ErrRefNotFound is returned when a requested ref is not advertised.
	ErrRefNotFound = errors.New("ref not found on remote")

	// ErrEmptyRepository is returned when the remote has no refs to clone.
	ErrEmptyRepository = errors.New("remote repository is empty")
)

const (
	uploadPackRequestType = "application/x-" + constants.UploadPackService + "-request"
	uploadPackResultType  = "application/x-" + constants.UploadPackService + "-result"
	gitProtocolHeader     = "Git-Protocol"
)

// Transport performs the two HTTP round trips of a clone.
type Transport interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
	Post(ctx context.Context, url, contentType string, body []byte, header http.Header) ([]byte, error)
}

// Progress is called after every stored object.
type Progress func(ingested, total int)

// Options describes one clone.
type Options struct {
	// URL is the repository URL without the info/refs suffix.
	URL string

	// Dir is the working directory to create the repository in.
	Dir string

	// Refs selects what to fetch. Short branch and tag names are accepted.
	// Empty means HEAD.
	Refs []string

	// Agent is sent in the agent capability. Empty omits it.
	Agent string

	Progress Progress
}

// Result summarizes a finished clone.
type Result struct {
	Branch  string
	HeadID  objects.ObjectID
	Refs    []protocol.Ref
	Objects int
}

// Cloner runs clones over a Transport.
type Cloner struct {
	transport Transport
}

func NewCloner(transport Transport) *Cloner {
	return &Cloner{
		transport: transport,
	}
}

// Clone initializes opts.Dir as a repository and fills it from opts.URL.
// On failure opts.Dir is removed if Clone created it; otherwise only the
// new metadata directory is.
func (c *Cloner) Clone(ctx context.Context, opts Options) (result *Result, err error) {
	baseURL := strings.TrimSuffix(opts.URL, "/")

	advertisement, err := c.Discover(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	selected, err := SelectRefs(advertisement, opts.Refs)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(opts.Dir)
	createdDir := errors.Is(statErr, fs.ErrNotExist)

	if err := os.MkdirAll(opts.Dir, constants.DirPerms); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", opts.Dir, err)
	}
	if err := repository.InitRepository(opts.Dir); err != nil {
		if createdDir {
			removeDir(opts.Dir)
		}
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		if createdDir {
			removeDir(opts.Dir)
		} else {
			repository.Remove(opts.Dir)
		}
	}()

	wants := make([]objects.ObjectID, 0, len(selected))
	for _, ref := range selected {
		wants = append(wants, ref.ID)
	}

	response, err := c.Fetch(ctx, baseURL, protocol.NewFetchRequest(advertisement.Capabilities, opts.Agent, wants))
	if err != nil {
		return nil, err
	}

	store := objects.NewObjectStore(repository.ObjectsDir(opts.Dir))
	count, err := Ingest(store, response, opts.Progress)
	if err != nil {
		return nil, err
	}

	branch, headID, err := writeRefs(opts.Dir, advertisement, selected)
	if err != nil {
		return nil, err
	}

	if !headID.IsZero() {
		if err := checkoutCommit(store, headID, opts.Dir); err != nil {
			return nil, err
		}
	} else {
		slog.Warn("No branch selected, skipping checkout", "branch", branch)
	}

	return &Result{
		Branch:  branch,
		HeadID:  headID,
		Refs:    selected,
		Objects: count,
	}, nil
}

// Discover fetches and parses the reference advertisement.
func (c *Cloner) Discover(ctx context.Context, baseURL string) (*protocol.Advertisement, error) {
	url := baseURL + "/info/refs?service=" + constants.UploadPackService

	body, err := c.transport.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("reference discovery failed: %w", err)
	}

	advertisement, err := protocol.ParseAdvertisement(body)
	if err != nil {
		return nil, fmt.Errorf("reference discovery failed: %w", err)
	}

	slog.Debug("Discovered refs", "url", baseURL, "count", len(advertisement.Refs))
	return advertisement, nil
}

// Fetch sends request to git-upload-pack and returns the raw response body.
func (c *Cloner) Fetch(ctx context.Context, baseURL string, request *protocol.FetchRequest) ([]byte, error) {
	body, err := request.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode fetch request: %w", err)
	}

	header := http.Header{}
	header.Set(gitProtocolHeader, constants.ProtocolV2Header)
	header.Set("Accept", uploadPackResultType)

	response, err := c.transport.Post(ctx, baseURL+"/"+constants.UploadPackService, uploadPackRequestType, body, header)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return response, nil
}

// SelectRefs resolves names against the advertisement, in order and
// without duplicates. A name matches exactly, or as refs/heads/<name>,
// or as refs/tags/<name>. No names selects HEAD.
func SelectRefs(advertisement *protocol.Advertisement, names []string) ([]protocol.Ref, error) {
	if len(advertisement.Refs) == 0 {
		return nil, ErrEmptyRepository
	}
	if len(names) == 0 {
		names = []string{constants.Head}
	}

	var selected []protocol.Ref
	seen := make(map[string]bool)
	for _, name := range names {
		ref, ok := lookupRef(advertisement, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRefNotFound, name)
		}
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		selected = append(selected, ref)
	}
	return selected, nil
}

func lookupRef(advertisement *protocol.Advertisement, name string) (protocol.Ref, bool) {
	for _, candidate := range []string{name, constants.BranchRefPrefix + name, constants.TagRefPrefix + name} {
		if ref, ok := advertisement.Lookup(candidate); ok {
			return ref, true
		}
	}
	return protocol.Ref{}, false
}

func removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove clone directory", "path", dir, "error", err)
		return
	}
	slog.Debug("Removed clone directory", "path", dir)
}
