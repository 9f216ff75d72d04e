package protocol

import (
	"bytes"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/pktline"
)

const defaultObjectFormat = "sha1"

// FetchRequest is a protocol v2 fetch command.
type FetchRequest struct {
	// Capabilities are sent as "key" or "key=value" lines before the arguments.
	Capabilities []string
	Wants        []objects.ObjectID
}

// NewFetchRequest builds a request for wants, announcing agent and the
// object format when the server advertised one.
func NewFetchRequest(advertised CapabilitySet, agent string, wants []objects.ObjectID) *FetchRequest {
	request := &FetchRequest{
		Wants: wants,
	}
	if agent != "" {
		request.Capabilities = append(request.Capabilities, CapAgent+"="+agent)
	}
	if format, ok := advertised.Get(CapObjectFormat); ok {
		if format == "" {
			format = defaultObjectFormat
		}
		request.Capabilities = append(request.Capabilities, CapObjectFormat+"="+format)
	}
	return request
}

// Encode renders the request body:
//
//	command=fetch
//	<capability lines>
//	0001
//	want <id>          one per distinct id, in order
//	done
//	0000
func (r *FetchRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := pktline.NewWriter(&buf)

	if err := w.WriteString("command=fetch\n"); err != nil {
		return nil, err
	}
	for _, capability := range r.Capabilities {
		if err := w.WriteString(capability + "\n"); err != nil {
			return nil, err
		}
	}
	if err := w.Delim(); err != nil {
		return nil, err
	}

	seen := make(map[objects.ObjectID]bool, len(r.Wants))
	for _, want := range r.Wants {
		if seen[want] {
			continue
		}
		seen[want] = true
		if err := w.WriteString("want " + want.String() + "\n"); err != nil {
			return nil, err
		}
	}

	if err := w.WriteString("done\n"); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
