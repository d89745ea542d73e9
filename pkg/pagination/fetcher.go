package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds fetcher configuration for one list operation.
type Config struct {
	// Operation names the bound RPC operation (logs, metrics, errors).
	Operation string

	// ServerPageSize is the server default and maximum page size.
	// Default: DefaultPageSize
	ServerPageSize int

	// Progress receives caller-visible paging progress. When nil, progress
	// is logged through the fetcher's logger.
	Progress Progress

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// fetchState lives for exactly one Fetch call.
type fetchState struct {
	cursor               *string
	remaining            *int
	totalEmitted         int
	pageSize             int
	callerControlsPaging bool
}

// Fetcher drives repeated calls to a single-page list operation.
// A Fetcher holds no per-enumeration state and may be reused.
type Fetcher[T any] struct {
	fetch  FetchFunc[T]
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a fetcher bound to fetch.
func NewFetcher[T any](fetch FetchFunc[T], config Config) *Fetcher[T] {
	if fetch == nil {
		panic("fetch func cannot be nil")
	}
	if config.ServerPageSize <= 0 {
		config.ServerPageSize = DefaultPageSize
	}

	logger := log.With().Str("component", "pagination").Logger()
	if config.Logger != nil {
		logger = *config.Logger
	}
	logger = logger.With().Str("operation", config.Operation).Logger()

	return &Fetcher[T]{
		fetch:  fetch,
		config: config,
		logger: logger,
	}
}

// Fetch enumerates pages until the server reports no more data or the cap in
// opts is reached, delivering each page to sink as it arrives.
//
// A fault from the FetchFunc, a sink error or a cancelled context ends the
// enumeration; the returned Result then describes what was delivered before.
func (f *Fetcher[T]) Fetch(ctx context.Context, opts Options, sink Sink[T]) (res Result, err error) {
	if sink == nil {
		return res, fmt.Errorf("%w: sink is required", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return res, err
	}

	state := f.newState(opts)
	start := time.Now()

	progress := Progress(nopProgress{})
	if state.callerControlsPaging {
		progress = f.config.Progress
		if progress == nil {
			progress = NewLogProgress(f.logger, f.config.Operation)
		}
	}
	defer progress.Complete()

	defer func() {
		paginationDuration.WithLabelValues(f.config.Operation).Observe(time.Since(start).Seconds())
		if err != nil {
			paginationFaultsTotal.WithLabelValues(f.config.Operation).Inc()
			f.logger.Error().
				Err(err).
				Int("pages", res.Pages).
				Int("items", res.Items).
				Msg("Enumeration failed")
			return
		}
		f.logger.Debug().
			Int("pages", res.Pages).
			Int("items", res.Items).
			Str("reason", string(res.Reason)).
			Dur("duration", time.Since(start)).
			Msg("Enumeration complete")
	}()

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s page %d: %w", f.config.Operation, res.Pages+1, ctxErr)
		}

		// Shrink only: once lowered to fit the cap the size never grows back.
		if state.remaining != nil && *state.remaining < state.pageSize {
			state.pageSize = *state.remaining
		}
		maxItems := state.pageSize
		req := PageRequest{
			Cursor:   state.cursor,
			MaxItems: &maxItems,
		}

		f.logger.Debug().
			Str("marker", deref(req.Cursor)).
			Int("max_items", maxItems).
			Int("page", res.Pages+1).
			Msg("Fetching page")

		resp, fetchErr := f.fetch(ctx, req)
		if fetchErr != nil {
			return res, fmt.Errorf("%s page %d: %w", f.config.Operation, res.Pages+1, fetchErr)
		}
		if resp == nil {
			resp = &PageResponse[T]{}
		}

		received := len(resp.Items)
		next := deref(resp.NextCursor)
		res.Pages++
		pagesFetchedTotal.WithLabelValues(f.config.Operation).Inc()
		progress.Page(received, deref(req.Cursor))

		if sinkErr := sink(resp.Items, next); sinkErr != nil {
			return res, fmt.Errorf("%s page %d sink: %w", f.config.Operation, res.Pages, sinkErr)
		}

		state.totalEmitted += received
		state.cursor = resp.NextCursor
		if state.remaining != nil {
			remaining := *state.remaining - received
			state.remaining = &remaining
		}
		res.Items = state.totalEmitted
		res.NextCursor = next
		itemsEmittedTotal.WithLabelValues(f.config.Operation).Add(float64(received))

		if next == "" {
			res.Reason = ReasonExhausted
			return res, nil
		}
		if opts.Cap != nil {
			if state.totalEmitted == 0 {
				res.Reason = ReasonEmptyPage
				return res, nil
			}
			if state.totalEmitted >= *opts.Cap {
				res.Reason = ReasonCapReached
				return res, nil
			}
		}
	}
}

// newState builds the per-call state. The page size hint is clamped down to the
// server maximum.
func (f *Fetcher[T]) newState(opts Options) *fetchState {
	state := &fetchState{
		cursor:               opts.StartCursor,
		pageSize:             f.config.ServerPageSize,
		callerControlsPaging: opts.CallerControlsPaging(),
	}
	if opts.PageSize != nil && *opts.PageSize < state.pageSize {
		state.pageSize = *opts.PageSize
	}
	if opts.Cap != nil {
		remaining := *opts.Cap
		state.remaining = &remaining
	}
	return state
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
