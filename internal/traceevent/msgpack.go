package traceevent

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the wire record layout changes.
const msgpackSchemaVersion uint16 = 1

// msgpackHeader opens every binary event log so readers can reject
// payloads written by an incompatible version.
type msgpackHeader struct {
	Schema uint16 `msgpack:"schema"`
}

// DecodeMsgpack reads a binary event log: a schema header followed by
// one record per event until EOF.
func DecodeMsgpack(r io.Reader) ([]Event, error) {
	dec := msgpack.NewDecoder(r)

	var hdr msgpackHeader
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("%w: missing msgpack header: %v", ErrMalformedEvent, err)
	}
	if hdr.Schema != msgpackSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrMalformedEvent, hdr.Schema)
	}

	var events []Event
	for i := 0; ; i++ {
		var w wireEvent
		if err := dec.Decode(&w); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("record %d: %w: %v", i, ErrMalformedEvent, err)
		}
		ev, err := w.toEvent()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// EncodeMsgpack writes events as a binary event log.
func EncodeMsgpack(w io.Writer, events []Event) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&msgpackHeader{Schema: msgpackSchemaVersion}); err != nil {
		return fmt.Errorf("failed to write msgpack header: %w", err)
	}
	for i, ev := range events {
		wire := fromEvent(ev)
		if err := enc.Encode(&wire); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
