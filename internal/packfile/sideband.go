package packfile

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/pktline"
)

// Sideband channels multiplexed into a fetch response.
const (
	ChannelPack     byte = 1
	ChannelProgress byte = 2
	ChannelError    byte = 3
)

// Demultiplex extracts the raw pack from a fetch response body. Section
// headers and acknowledgments before the pack are skipped, progress
// messages are logged, and a message on the error channel aborts with
// pktline.ErrProtocol. A body that already starts with "PACK" is returned
// unchanged.
func Demultiplex(body []byte) ([]byte, error) {
	if bytes.HasPrefix(body, signature[:]) {
		return body, nil
	}

	var pack []byte
	inPack := false

	for line, err := range pktline.NewReader(bytes.NewReader(body)).All() {
		if err != nil {
			return nil, err
		}

		if line.Kind != pktline.Data {
			if inPack {
				break
			}
			continue
		}
		if len(line.Payload) == 0 {
			continue
		}

		channel, data := line.Payload[0], line.Payload[1:]
		switch {
		case channel == ChannelProgress:
			logProgress(data)
		case channel == ChannelError:
			return nil, fmt.Errorf("%w: remote error: %s", pktline.ErrProtocol, strings.TrimSpace(string(data)))
		case channel == ChannelPack && (inPack || bytes.HasPrefix(data, signature[:])):
			inPack = true
			pack = append(pack, data...)
		case inPack:
			return nil, fmt.Errorf("%w: unexpected line %q inside pack data", pktline.ErrProtocol, line.Text())
		default:
			slog.Debug("Skipping response line", "line", line.Text())
		}
	}

	if !inPack {
		return nil, fmt.Errorf("%w: response contains no pack data", pktline.ErrProtocol)
	}
	return pack, nil
}

func logProgress(data []byte) {
	// Progress uses \r to redraw a line, so split on both separators
	for message := range strings.FieldsFuncSeq(string(data), func(r rune) bool {
		return r == '\r' || r == '\n'
	}) {
		slog.Debug("Remote", "message", message)
	}
}
