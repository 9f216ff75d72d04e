package clone

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/pktline"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// packEntry is one object for buildPack. base is written after the header
// for delta kinds.
type packEntry struct {
	kind    byte
	payload []byte
	base    []byte
}

// buildPack assembles a version 2 pack with a SHA-1 trailer.
func buildPack(t *testing.T, entries ...packEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("PACK")
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(len(entries)))

	for _, entry := range entries {
		size := uint64(len(entry.payload))
		c := entry.kind<<4 | byte(size&0x0f)
		size >>= 4
		for size > 0 {
			buf.WriteByte(c | 0x80)
			c = byte(size & 0x7f)
			size >>= 7
		}
		buf.WriteByte(c)
		buf.Write(entry.base)

		w := zlib.NewWriter(&buf)
		_, err := w.Write(entry.payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	sum := sha1.Sum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes()
}

// frame encodes pkt-lines; nil becomes a flush-pkt.
func frame(t *testing.T, lines ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := pktline.NewWriter(&buf)
	for _, line := range lines {
		if line == nil {
			require.NoError(t, w.Flush())
			continue
		}
		require.NoError(t, w.WriteLine(line))
	}
	return buf.Bytes()
}

// sampleRepo is a one-commit repository: README.md, run.sh and docs/guide.md.
type sampleRepo struct {
	commit  *objects.Commit
	entries []packEntry
}

func newSampleRepo(t *testing.T) *sampleRepo {
	t.Helper()

	readme := objects.NewBlob([]byte("# sample\n"))
	script := objects.NewBlob([]byte("#!/bin/sh\necho sample\n"))
	guide := objects.NewBlob([]byte("guide\n"))

	docs := mustTree(t, mustEntry(t, objects.ModeRegularFile, "guide.md", guide.ID()))
	root := mustTree(t,
		mustEntry(t, objects.ModeRegularFile, "README.md", readme.ID()),
		mustEntry(t, objects.ModeExecutable, "run.sh", script.ID()),
		mustEntry(t, objects.ModeDirectory, "docs", docs.ID()),
	)

	author := objects.Author{
		Name:      "Sample Author",
		Email:     "author@example.com",
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
	commit, err := objects.NewInitialCommit(root.ID(), "initial commit\n", author)
	require.NoError(t, err)

	return &sampleRepo{
		commit: commit,
		entries: []packEntry{
			{kind: 1, payload: commit.Content()},
			{kind: 2, payload: root.Content()},
			{kind: 2, payload: docs.Content()},
			{kind: 3, payload: readme.Content()},
			{kind: 3, payload: script.Content()},
			{kind: 3, payload: guide.Content()},
		},
	}
}

func mustEntry(t *testing.T, mode objects.FileMode, name string, id objects.ObjectID) objects.TreeEntry {
	t.Helper()

	entry, err := objects.NewTreeEntry(mode, name, id)
	require.NoError(t, err)
	return *entry
}

func mustTree(t *testing.T, entries ...objects.TreeEntry) *objects.Tree {
	t.Helper()

	tree, err := objects.NewTree(entries)
	require.NoError(t, err)
	return tree
}

// fakeRemote serves a smart HTTP repository at /repo.
type fakeRemote struct {
	advertisement []byte
	response      []byte
	fetchBody     atomic.Value
	fetchHeader   atomic.Value
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/repo/info/refs":
		if r.URL.Query().Get("service") != "git-upload-pack" {
			http.Error(w, "bad service", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		w.Write(f.advertisement)

	case r.Method == http.MethodPost && r.URL.Path == "/repo/git-upload-pack":
		var body bytes.Buffer
		body.ReadFrom(r.Body)
		f.fetchBody.Store(body.String())
		f.fetchHeader.Store(r.Header.Clone())
		w.Header().Set("Content-Type", "application/x-git-upload-pack-result")
		w.Write(f.response)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeRemote) lastFetch() (string, http.Header) {
	body, _ := f.fetchBody.Load().(string)
	header, _ := f.fetchHeader.Load().(http.Header)
	return body, header
}

// advertise builds an info/refs body. The first ref carries caps.
func advertise(t *testing.T, caps string, refs ...string) []byte {
	t.Helper()

	lines := [][]byte{[]byte("# service=git-upload-pack\n"), nil}
	for i, ref := range refs {
		if i == 0 {
			ref += "\x00" + caps
		}
		lines = append(lines, []byte(ref+"\n"))
	}
	return frame(t, append(lines, nil)...)
}

// fetchResponse wraps a pack the way a protocol v2 server does.
func fetchResponse(t *testing.T, pack []byte) []byte {
	t.Helper()

	half := len(pack) / 2
	return frame(t,
		[]byte("packfile\n"),
		append([]byte{2}, "Enumerating objects: done.\n"...),
		append([]byte{1}, pack[:half]...),
		append([]byte{1}, pack[half:]...),
		nil,
	)
}

func startRemote(t *testing.T, remote *fakeRemote) string {
	t.Helper()

	server := httptest.NewServer(remote)
	t.Cleanup(server.Close)
	return server.URL + "/repo"
}

func refLine(id objects.ObjectID, name string) string {
	return strings.Join([]string{id.String(), name}, " ")
}
