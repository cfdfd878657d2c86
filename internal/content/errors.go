package content

import (
	"errors"
	"fmt"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/model"
)

// Read-side errors. They are returned wrapped in an *apperror.AppError whose
// category decides the HTTP status, so callers can test either level:
//
//	errors.Is(err, content.ErrUnknownTag)   // what happened
//	errors.Is(err, apperror.ErrNotFound)    // how to report it
var (
	ErrNotInitialized  = errors.New("content cache not initialized")
	ErrEmptyCollection = errors.New("empty collection")
	ErrUnknownTag      = errors.New("unknown tag")
)

// Source-side errors. Sources wrap one of these so the Loader can classify a
// failure without knowing which backend produced it.
var (
	ErrSourceUnavailable = errors.New("content source unavailable")
	ErrMalformed         = errors.New("malformed content")
	ErrInvalidRecord     = errors.New("invalid record")
)

// LoadReason discriminates LoadError values.
type LoadReason string

const (
	ReasonParse             LoadReason = "parse"
	ReasonSchema            LoadReason = "schema"
	ReasonSourceUnavailable LoadReason = "source-unavailable"
)

// LoadError is returned by Loader.Load and by Cache.Initialize/Reload.
// Record is the zero-based index of the offending record, or -1 when the
// failure is not tied to one record.
type LoadError struct {
	Kind   model.Kind
	Reason LoadReason
	Record int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Record >= 0 {
		return fmt.Sprintf("load %s: %s: record %d: %v", e.Kind.Plural(), e.Reason, e.Record, e.Err)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Kind.Plural(), e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func schemaError(kind model.Kind, index int, format string, args ...any) *LoadError {
	return &LoadError{
		Kind:   kind,
		Reason: ReasonSchema,
		Record: index,
		Err:    fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...)),
	}
}

// classify turns an error returned by a Source into a LoadError.
func classify(kind model.Kind, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		out := *le
		if out.Kind == "" {
			out.Kind = kind
		}
		return &out
	}

	// Timeouts and cancellation fall through to source-unavailable.
	reason := ReasonSourceUnavailable
	switch {
	case errors.Is(err, ErrMalformed):
		reason = ReasonParse
	case errors.Is(err, ErrInvalidRecord):
		reason = ReasonSchema
	}
	return &LoadError{Kind: kind, Reason: reason, Record: -1, Err: err}
}

func notInitialized() *apperror.AppError {
	return apperror.Unavailable("content is not loaded yet").WithCause(ErrNotInitialized)
}

func emptyCollection(kind model.Kind) *apperror.AppError {
	return (&apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: fmt.Sprintf("No data available for %s", kind.Plural()),
	}).WithCause(ErrEmptyCollection).WithDetails(map[string]any{
		"kind": string(kind),
	})
}

func unknownTag(s *Snapshot, requested string) *apperror.AppError {
	field := s.kind.TagField()
	return (&apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: fmt.Sprintf("No %s available for %s '%s'", s.kind.Plural(), field, requested),
		Field:   field,
	}).WithCause(ErrUnknownTag).WithDetails(map[string]any{
		"requested": requested,
		"available": ListTags(s),
	})
}
