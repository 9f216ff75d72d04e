package clone

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/packfile"
)

// Ingest extracts the pack from a fetch response and stores every object
// in it. It stops at the first error, including delta entries, and
// returns how many objects were stored before that.
func Ingest(store *objects.ObjectStore, response []byte, progress Progress) (int, error) {
	pack, err := packfile.Demultiplex(response)
	if err != nil {
		return 0, err
	}

	decoder, err := packfile.NewDecoder(pack)
	if err != nil {
		return 0, err
	}

	total := decoder.Remaining()
	slog.Debug("Receiving pack", "bytes", len(pack), "count", total)

	ingested := 0
	for {
		object, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ingested, err
		}

		_, data, err := object.Encode()
		if err != nil {
			return ingested, fmt.Errorf("failed to encode %s at offset %d: %w", object.Type, object.Header.Offset, err)
		}
		if _, err := store.Put(data); err != nil {
			return ingested, err
		}

		ingested++
		if progress != nil {
			progress(ingested, total)
		}
	}

	slog.Debug("Stored pack objects", "count", ingested)
	return ingested, nil
}
