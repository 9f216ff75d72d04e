// Package protocol builds and parses the messages of the git smart HTTP
// protocol used for fetching: the reference advertisement returned by
// info/refs and the fetch request sent to git-upload-pack.
package protocol

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/pktline"
)

// ErrProtocol reports a malformed protocol message.
var ErrProtocol = pktline.ErrProtocol

const (
	servicePrefix = "# service="
	peeledSuffix  = "^{}"

	// emptyRepoRef is advertised with a zero id when a repository has no refs.
	emptyRepoRef = "capabilities^{}"
)

// Ref is one advertised reference.
type Ref struct {
	ID   objects.ObjectID
	Name string
}

// Advertisement is a parsed reference discovery response.
type Advertisement struct {
	Service      string
	Refs         []Ref
	Capabilities CapabilitySet
}

// Lookup finds a ref by its full name.
func (a *Advertisement) Lookup(name string) (Ref, bool) {
	for _, ref := range a.Refs {
		if ref.Name == name {
			return ref, true
		}
	}
	return Ref{}, false
}

// HeadTarget returns the ref HEAD points to when the server advertises it.
func (a *Advertisement) HeadTarget() (string, bool) {
	return a.Capabilities.Symref(constants.Head)
}

// ParseAdvertisement parses the body of GET info/refs. The smart HTTP
// service announcement and its flush are optional. The first ref line
// carries the capability list after a NUL byte; peeled tag lines are
// dropped and refs keep their encounter order.
func ParseAdvertisement(body []byte) (*Advertisement, error) {
	advertisement := &Advertisement{
		Capabilities: make(CapabilitySet),
	}

	reader := pktline.NewReader(bytes.NewReader(body))
	first := true

	for line, err := range reader.All() {
		if err != nil {
			return nil, err
		}

		if line.Kind != pktline.Data {
			if advertisement.Service != "" && first {
				// End of the service announcement section
				continue
			}
			break
		}

		text := line.Text()
		if first && advertisement.Service == "" && strings.HasPrefix(text, servicePrefix) {
			advertisement.Service = strings.TrimPrefix(text, servicePrefix)
			continue
		}
		if text == "version 2" {
			return nil, fmt.Errorf("%w: server answered with a protocol v2 capability advertisement", ErrProtocol)
		}

		if first {
			name, caps, found := strings.Cut(text, "\x00")
			if !found {
				return nil, fmt.Errorf("%w: first ref line has no capability list", ErrProtocol)
			}
			advertisement.Capabilities.Merge(caps)
			text = name
			first = false
		}

		ref, err := parseRefLine(text)
		if err != nil {
			return nil, err
		}
		if ref.Name == emptyRepoRef || strings.HasSuffix(ref.Name, peeledSuffix) {
			continue
		}
		advertisement.Refs = append(advertisement.Refs, ref)
	}

	if first {
		return nil, fmt.Errorf("%w: advertisement contains no ref lines", ErrProtocol)
	}
	return advertisement, nil
}

// parseRefLine parses "<40 hex id> <refname>".
func parseRefLine(text string) (Ref, error) {
	hash, name, found := strings.Cut(text, " ")
	if !found || name == "" {
		return Ref{}, fmt.Errorf("%w: malformed ref line %q", ErrProtocol, text)
	}

	id, err := objects.ParseObjectID(hash)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: ref %s: %v", ErrProtocol, name, err)
	}

	return Ref{ID: id, Name: name}, nil
}
