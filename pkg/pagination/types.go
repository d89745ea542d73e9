package pagination

import (
	"context"
	"errors"
	"fmt"
)

// DefaultPageSize is the maximum page size advertised by the service's list
// operations. Larger requested sizes are clamped down to it.
const DefaultPageSize = 20

// ErrInvalidOptions is returned when Options fail validation. No request is
// sent in that case.
var ErrInvalidOptions = errors.New("invalid pagination options")

// PageRequest is the paging part of a single list request.
type PageRequest struct {
	// Cursor is the marker returned by the previous page, nil on the first call.
	Cursor *string

	// MaxItems is the number of items requested for this page.
	MaxItems *int
}

// PageResponse is one page returned by a list operation.
type PageResponse[T any] struct {
	Items []T

	// NextCursor is nil or empty when there is no more data.
	NextCursor *string
}

// FetchFunc performs exactly one list call. A returned error is treated as
// the terminal fault of the page.
type FetchFunc[T any] func(ctx context.Context, req PageRequest) (*PageResponse[T], error)

// Sink receives each page as soon as it is retrieved.
type Sink[T any] func(items []T, nextCursor string) error

// Options are the caller-supplied paging inputs of one enumeration.
type Options struct {
	// StartCursor resumes an enumeration from a marker returned earlier.
	StartCursor *string

	// Cap is the total number of items wanted across all pages.
	Cap *int

	// PageSize is the requested number of items per call. The server
	// default applies when nil.
	PageSize *int
}

// CallerControlsPaging reports whether the caller supplied a start cursor or a
// cap. Progress is only reported in that mode.
func (o Options) CallerControlsPaging() bool {
	return o.StartCursor != nil || o.Cap != nil
}

// Validate checks the presence-qualified fields of the options.
func (o Options) Validate() error {
	if o.Cap != nil && *o.Cap <= 0 {
		return fmt.Errorf("%w: cap must be > 0 (got %d)", ErrInvalidOptions, *o.Cap)
	}
	if o.PageSize != nil && *o.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be > 0 (got %d)", ErrInvalidOptions, *o.PageSize)
	}
	return nil
}

// StopReason describes why an enumeration finished successfully.
type StopReason string

const (
	// ReasonExhausted means the server returned an empty next cursor.
	ReasonExhausted StopReason = "exhausted"

	// ReasonCapReached means the caller's cap was satisfied.
	ReasonCapReached StopReason = "cap_reached"

	// ReasonEmptyPage means a capped enumeration got a page with no items
	// but a non-empty cursor. The loop stops instead of spinning on it.
	ReasonEmptyPage StopReason = "empty_page"
)

// Result summarizes a finished enumeration. On error it holds what was
// delivered before the fault.
type Result struct {
	Pages int
	Items int

	// NextCursor is the marker to resume from, empty when exhausted.
	NextCursor string

	Reason StopReason
}

// String returns a pointer to s. Handy for filling optional fields.
func String(s string) *string {
	return &s
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}
