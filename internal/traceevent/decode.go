package traceevent

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMalformedEvent indicates a record that cannot become an Event.
// Records missing the id or event_type field fail fast instead of
// silently creating a corrupt span.
var ErrMalformedEvent = errors.New("malformed trace event")

// Format represents the encoding of an event log.
type Format uint8

const (
	FormatAuto    Format = iota // detect from file extension
	FormatNDJSON                // newline-delimited JSON
	FormatMsgpack               // msgpack stream
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatNDJSON:
		return "ndjson"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "ndjson", "jsonl", "json":
		return FormatNDJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatAuto, fmt.Errorf("invalid event log format: %q (expected: auto|ndjson|msgpack)", s)
	}
}

// DetectFormat picks a Format from the file extension.
// NDJSON is the default for unrecognized extensions since it is what
// trace reporters write.
func DetectFormat(path string) Format {
	switch {
	case strings.HasSuffix(path, ".mp"), strings.HasSuffix(path, ".msgpack"):
		return FormatMsgpack
	default:
		return FormatNDJSON
	}
}

// wireEvent mirrors the on-disk record layout. Required fields are
// pointers so that "absent" is distinguishable from a zero value.
type wireEvent struct {
	ID         *uint64           `json:"id" msgpack:"id"`
	Name       string            `json:"name" msgpack:"name"`
	EventType  *string           `json:"event_type" msgpack:"event_type"`
	ParentID   *uint64           `json:"parent_id,omitempty" msgpack:"parent_id,omitempty"`
	UnixMillis *uint64           `json:"unix_ts_millis,omitempty" msgpack:"unix_ts_millis,omitempty"`
	Data       map[string]string `json:"data,omitempty" msgpack:"data,omitempty"`
}

func (w *wireEvent) toEvent() (Event, error) {
	if w.ID == nil {
		return Event{}, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	if w.EventType == nil {
		return Event{}, fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	}
	return Event{
		ID:         *w.ID,
		Name:       w.Name,
		Phase:      ParsePhase(*w.EventType),
		ParentID:   w.ParentID,
		UnixMillis: w.UnixMillis,
		Data:       w.Data,
	}, nil
}

func fromEvent(ev Event) wireEvent {
	id := ev.ID
	phase := ev.Phase.String()
	return wireEvent{
		ID:         &id,
		Name:       ev.Name,
		EventType:  &phase,
		ParentID:   ev.ParentID,
		UnixMillis: ev.UnixMillis,
		Data:       ev.Data,
	}
}

// DecodeNDJSON reads one JSON record per line. Blank lines are skipped.
func DecodeNDJSON(r io.Reader) ([]Event, error) {
	var events []Event

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var w wireEvent
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ErrMalformedEvent, err)
		}
		ev, err := w.toEvent()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return events, nil
}

// EncodeNDJSON writes events one JSON record per line.
func EncodeNDJSON(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for i, ev := range events {
		wire := fromEvent(ev)
		if err := enc.Encode(&wire); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// ReadFile loads and decodes an entire event log.
// FormatAuto detects the encoding from the file extension.
func ReadFile(path string, format Format) ([]Event, error) {
	if format == FormatAuto {
		format = DetectFormat(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close() //nolint:errcheck

	switch format {
	case FormatNDJSON:
		return DecodeNDJSON(bufio.NewReader(f))
	case FormatMsgpack:
		return DecodeMsgpack(bufio.NewReader(f))
	default:
		return nil, fmt.Errorf("unknown event log format: %v", format)
	}
}
