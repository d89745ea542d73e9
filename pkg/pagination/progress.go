package pagination

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Progress receives paging progress when the caller controls paging.
// Complete is called exactly once per enumeration, on every exit path.
type Progress interface {
	// Page reports a successfully retrieved page and the marker it started from.
	Page(retrieved int, marker string)

	// Complete signals the end of the enumeration.
	Complete()
}

// ProgressMessage formats the per-page progress text.
func ProgressMessage(retrieved int, marker string) string {
	return fmt.Sprintf("Retrieved %d records starting from marker '%s'", retrieved, marker)
}

type nopProgress struct{}

func (nopProgress) Page(int, string) {}
func (nopProgress) Complete()        {}

// LogProgress reports progress through a zerolog logger.
type LogProgress struct {
	logger   zerolog.Logger
	activity string
}

// NewLogProgress creates a progress reporter that logs at info level.
func NewLogProgress(logger zerolog.Logger, activity string) *LogProgress {
	return &LogProgress{
		logger:   logger,
		activity: activity,
	}
}

// Page implements Progress.
func (p *LogProgress) Page(retrieved int, marker string) {
	p.logger.Info().
		Str("activity", p.activity).
		Int("retrieved", retrieved).
		Str("marker", marker).
		Msg(ProgressMessage(retrieved, marker))
}

// Complete implements Progress.
func (p *LogProgress) Complete() {
	p.logger.Info().
		Str("activity", p.activity).
		Msg("Retrieval complete")
}

// WriterProgress writes one progress line per event to w (usually stderr, so
// stdout stays clean for pipeline output).
type WriterProgress struct {
	mu       sync.Mutex
	w        io.Writer
	activity string
}

// NewWriterProgress creates a progress reporter writing to w.
func NewWriterProgress(w io.Writer, activity string) *WriterProgress {
	return &WriterProgress{
		w:        w,
		activity: activity,
	}
}

// Page implements Progress.
func (p *WriterProgress) Page(retrieved int, marker string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: %s\n", p.activity, ProgressMessage(retrieved, marker))
}

// Complete implements Progress.
func (p *WriterProgress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: complete\n", p.activity)
}
