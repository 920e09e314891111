package utils

import (
	"fmt"
	"log/slog"
)

// Warnings collects the recoverable problems of one sync run. The list is
// threaded through the pipeline explicitly and ends up in the output
// document so operators can audit data quality without reading logs.
type Warnings struct {
	items []string
}

func NewWarnings() *Warnings {
	return &Warnings{
		items: make([]string, 0),
	}
}

// Record a warning and log it.
func (w *Warnings) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.items = append(w.items, msg)
	slog.Warn(msg)
}

// Get a copy of all recorded warnings
func (w *Warnings) Items() []string {
	items := make([]string, len(w.items))
	copy(items, w.items)
	return items
}

// Get the number of recorded warnings
func (w *Warnings) Count() int {
	return len(w.items)
}
