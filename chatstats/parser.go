package chatstats

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrMalformedDate marks an included record whose date is missing or unreadable.
var ErrMalformedDate = errors.New("malformed or missing date")

// RecordError reports which record of an archive could not be parsed.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// RawRecord is one entry of an export's messages array, as written by the chat client.
type RawRecord struct {
	ID           json.RawMessage `json:"id,omitempty"`
	Type         string          `json:"type,omitempty"`
	Date         string          `json:"date,omitempty"`
	From         *string         `json:"from,omitempty"`
	TextEntities []TextEntity    `json:"text_entities,omitempty"`
}

// TextEntity is one text fragment of a record (plain text, link, mention, bold run, ...).
type TextEntity struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// ParseRecords converts raw records into messages, keeping the archive's order.
//
// Records without an author are dropped. A dropped record's date is never inspected; an
// included record with a missing or malformed date fails the whole archive.
func ParseRecords(records []RawRecord) ([]Message, error) {
	out := make([]Message, 0, len(records))
	for i, rec := range records {
		m, ok, err := parseRecord(i, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func parseRecord(index int, rec RawRecord) (Message, bool, error) {
	if rec.From == nil {
		return Message{}, false, nil
	}
	author := strings.TrimSpace(*rec.From)
	if author == "" {
		return Message{}, false, nil
	}

	day, err := parseDay(strings.TrimSpace(rec.Date))
	if err != nil {
		return Message{}, false, &RecordError{Index: index, Err: err}
	}

	var text strings.Builder
	for _, e := range rec.TextEntities {
		text.WriteString(e.Text)
	}

	return Message{
		ID:        recordID(rec.ID),
		Author:    author,
		Text:      text.String(),
		Date:      day,
		Timestamp: parseTimestamp(strings.TrimSpace(rec.Date)),
	}, true, nil
}

func recordID(raw json.RawMessage) int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ParseArchive reads one chat export and returns its messages in the export's order.
//
// The input is expected to be either:
// - a top-level JSON object with a "messages" array (and usually a "name")
// - a top-level JSON array of message records
//
// It uses a streaming decoder so only one record is materialized at a time.
func ParseArchive(ctx context.Context, r io.Reader) (Archive, error) {
	if ctx == nil {
		return Archive{}, errors.New("ParseArchive: ctx is nil")
	}
	if r == nil {
		return Archive{}, errors.New("ParseArchive: reader is nil")
	}

	dec := json.NewDecoder(bufio.NewReaderSize(r, 1<<20))

	tok, err := dec.Token()
	if err != nil {
		return Archive{}, fmt.Errorf("ParseArchive: read first token: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return Archive{}, fmt.Errorf("ParseArchive: expected JSON array/object, got %T", tok)
	}

	var archive Archive
	switch delim {
	case '[':
		msgs, err := parseRecordArray(ctx, dec)
		if err != nil {
			return Archive{}, err
		}
		archive.Messages = msgs
		if err := expectDelim(dec, ']'); err != nil {
			return Archive{}, err
		}
		return archive, nil
	case '{':
		foundMessages := false
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return Archive{}, fmt.Errorf("ParseArchive: read object key: %w", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return Archive{}, fmt.Errorf("ParseArchive: expected string key, got %T", keyTok)
			}

			switch key {
			case "name":
				var name *string
				if err := dec.Decode(&name); err != nil {
					return Archive{}, fmt.Errorf("ParseArchive: decode name: %w", err)
				}
				if name != nil {
					archive.Name = strings.TrimSpace(*name)
				}
			case "messages":
				if err := expectDelim(dec, '['); err != nil {
					return Archive{}, fmt.Errorf("ParseArchive: messages: %w", err)
				}
				msgs, err := parseRecordArray(ctx, dec)
				if err != nil {
					return Archive{}, err
				}
				if err := expectDelim(dec, ']'); err != nil {
					return Archive{}, err
				}
				archive.Messages = msgs
				foundMessages = true
			default:
				valTok, err := dec.Token()
				if err != nil {
					return Archive{}, fmt.Errorf("ParseArchive: read value token for key %q: %w", key, err)
				}
				if err := skipValue(dec, valTok); err != nil {
					return Archive{}, fmt.Errorf("ParseArchive: skip key %q value: %w", key, err)
				}
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return Archive{}, err
		}
		if !foundMessages {
			return Archive{}, errors.New("ParseArchive: no messages array found in top-level object")
		}
		return archive, nil
	default:
		return Archive{}, fmt.Errorf("ParseArchive: unsupported top-level delimiter %q", delim)
	}
}

func parseRecordArray(ctx context.Context, dec *json.Decoder) ([]Message, error) {
	var out []Message
	for i := 0; dec.More(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var rec RawRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("ParseArchive: %w", &RecordError{Index: i, Err: err})
		}
		m, ok, err := parseRecord(i, rec)
		if err != nil {
			return nil, fmt.Errorf("ParseArchive: %w", err)
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("ParseArchive: read %q token: %w", want, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("ParseArchive: expected %q, got %v", want, tok)
	}
	return nil
}

func skipValue(dec *json.Decoder, first json.Token) error {
	d, ok := first.(json.Delim)
	if !ok {
		// Primitive (string/number/bool/null): already fully consumed.
		return nil
	}

	switch d {
	case '{', '[':
	default:
		return fmt.Errorf("skipValue: unexpected delimiter %q", d)
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		if dd, ok := tok.(json.Delim); ok {
			switch dd {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// ParseArchives parses several exports, at most concurrency at a time (0 = unbounded).
// The result is in the order of readers regardless of which parse finishes first.
func ParseArchives(ctx context.Context, readers []io.Reader, concurrency int) ([]Archive, error) {
	if ctx == nil {
		return nil, errors.New("ParseArchives: ctx is nil")
	}

	out := make([]Archive, len(readers))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, r := range readers {
		i, r := i, r
		g.Go(func() error {
			a, err := ParseArchive(gctx, r)
			if err != nil {
				return fmt.Errorf("ParseArchives: archive %d: %w", i, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
