package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/runoshun/git-qa/internal/domain"
)

var (
	_ domain.StatusReporter = (*StatusRelay)(nil)
	_ domain.StatusReporter = (*WriterStatus)(nil)
)

// StatusRelay forwards status updates to a swappable target.
// Clients keep the relay while the UI attaches and detaches its own reporter.
type StatusRelay struct {
	target domain.StatusReporter
	mu     sync.RWMutex
}

// NewStatusRelay creates a relay that discards updates until a target is attached.
func NewStatusRelay() *StatusRelay {
	return &StatusRelay{target: domain.NopStatus{}}
}

// Attach routes updates to target. A nil target discards them.
func (r *StatusRelay) Attach(target domain.StatusReporter) {
	if target == nil {
		target = domain.NopStatus{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
}

// Status returns the status of the current target.
func (r *StatusRelay) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.target.Status()
}

// SetStatus forwards msg to the current target.
func (r *StatusRelay) SetStatus(msg string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.target.SetStatus(msg)
}

// WriterStatus prints every new status as a line.
type WriterStatus struct {
	w       io.Writer
	current string
	mu      sync.Mutex
}

// NewWriterStatus creates a WriterStatus printing to w.
func NewWriterStatus(w io.Writer) *WriterStatus {
	return &WriterStatus{w: w}
}

// Status returns the last status.
func (s *WriterStatus) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetStatus prints msg unless it repeats the current status.
func (s *WriterStatus) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == s.current {
		return
	}
	s.current = msg
	if msg != "" {
		_, _ = fmt.Fprintln(s.w, msg)
	}
}
