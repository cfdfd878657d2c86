package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/truthdare/truthdare-api/internal/model"
)

// RawRecord is one record as it arrives from a source, before validation.
//
// Field names follow the published data files ("content" plus "category" or
// "difficulty"); "text" and "tag" are accepted as aliases. ID is kept raw so
// the Loader can reject non-integer ids as a schema error instead of a
// decode failure.
type RawRecord struct {
	ID         json.RawMessage `json:"id"`
	Content    *string         `json:"content,omitempty"`
	Text       *string         `json:"text,omitempty"`
	Category   *string         `json:"category,omitempty"`
	Difficulty *string         `json:"difficulty,omitempty"`
	Tag        *string         `json:"tag,omitempty"`
}

// Source supplies the raw records of one kind.
//
// Implementations wrap ErrSourceUnavailable, ErrMalformed or ErrInvalidRecord
// so the Loader can classify failures. Records must honour ctx.
type Source interface {
	Records(ctx context.Context, kind model.Kind) ([]RawRecord, error)
}

// Loader turns a Source into validated Snapshots.
// It holds no state between calls and never touches the Cache.
type Loader struct {
	source  Source
	timeout time.Duration
}

// NewLoader creates a Loader reading from src. A positive timeout bounds each
// Load call on top of whatever deadline the caller's context carries.
func NewLoader(src Source, timeout time.Duration) *Loader {
	return &Loader{source: src, timeout: timeout}
}

// Load reads, validates and indexes one kind.
//
// The whole load fails on the first invalid record; a partial snapshot is
// never returned. Errors are always *LoadError.
func (l *Loader) Load(ctx context.Context, kind model.Kind) (*Snapshot, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	raws, err := l.source.Records(ctx, kind)
	if err != nil {
		return nil, classify(kind, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Kind: kind, Reason: ReasonSourceUnavailable, Record: -1, Err: err}
	}

	records := make([]model.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := convert(kind, i, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return NewSnapshot(kind, records)
}

// convert checks field presence and types. Tag membership, empty text and
// duplicate ids are checked by NewSnapshot.
func convert(kind model.Kind, index int, raw RawRecord) (model.Record, error) {
	id, err := parseID(raw.ID)
	if err != nil {
		return model.Record{}, schemaError(kind, index, "%v", err)
	}

	text := firstOf(raw.Content, raw.Text)
	if text == nil {
		return model.Record{}, schemaError(kind, index, "missing content")
	}

	kindTag := raw.Category
	if kind == model.KindDare {
		kindTag = raw.Difficulty
	}
	tag := firstOf(kindTag, raw.Tag)
	if tag == nil {
		return model.Record{}, schemaError(kind, index, "missing %s", kind.TagField())
	}

	return model.Record{ID: id, Text: *text, Tag: *tag}, nil
}

func parseID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("missing id")
	}
	// strconv rejects quoted, fractional and exponent forms.
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %s is not an integer", raw)
	}
	return id, nil
}

func firstOf(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// DecodeRecords parses a JSON array of records.
//
// Syntax errors, a top-level value that is not an array and trailing data
// wrap ErrMalformed. An element that is valid JSON but has the wrong shape
// (for example a string, or a number where content is expected) wraps
// ErrInvalidRecord.
func DecodeRecords(r io.Reader) ([]RawRecord, error) {
	dec := json.NewDecoder(r)

	var elems []json.RawMessage
	if err := dec.Decode(&elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if elems == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON array", ErrMalformed)
	}

	records := make([]RawRecord, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &records[i]); err != nil {
			return nil, &LoadError{
				Reason: ReasonSchema,
				Record: i,
				Err:    fmt.Errorf("%w: %v", ErrInvalidRecord, err),
			}
		}
	}
	return records, nil
}
