package tui

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/git-qa/internal/domain"
)

var _ domain.StatusReporter = (*ProgramStatus)(nil)

// StatusLineInfo contains information for rendering the status line.
// Fields are ordered to minimize memory padding.
type StatusLineInfo struct {
	Status   string // Live status of the running operation
	KeyHints []KeyHint
}

// KeyHint represents a key and its description.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusLine renders a unified status line at the bottom of the screen.
// Fields are ordered to minimize memory padding.
type StatusLine struct {
	styles *Styles
	width  int
}

// NewStatusLine creates a new StatusLine with the given width and styles.
func NewStatusLine(width int, styles *Styles) *StatusLine {
	return &StatusLine{
		width:  width,
		styles: styles,
	}
}

// SetWidth updates the status line width.
func (s *StatusLine) SetWidth(width int) {
	s.width = width
}

// Render renders the status line with the given info.
func (s *StatusLine) Render(info StatusLineInfo) string {
	keyStyle := s.styles.FooterKey

	hints := make([]string, 0, len(info.KeyHints))
	for _, h := range info.KeyHints {
		hints = append(hints, keyStyle.Render(h.Key)+" "+h.Desc)
	}
	content := strings.Join(hints, "  ")
	right := s.styles.Progress.Render(info.Status)

	if s.width <= 0 {
		if info.Status == "" {
			return s.styles.Footer.Render(content)
		}
		return s.styles.Footer.Render(content + "  " + right)
	}

	contentWidth := s.width - 2 // Account for padding
	rightLen := lipgloss.Width(right)
	contentLen := lipgloss.Width(content)

	maxContentWidth := contentWidth - rightLen - 2
	if contentLen > maxContentWidth {
		if maxContentWidth <= 3 {
			content = "..."
		} else {
			truncateStyle := lipgloss.NewStyle().MaxWidth(maxContentWidth - 3)
			content = truncateStyle.Render(content) + "..."
		}
		contentLen = lipgloss.Width(content)
	}

	spacing := contentWidth - contentLen - rightLen
	if spacing < 1 {
		spacing = 1
	}
	return s.styles.Footer.Width(s.width).Render(content + strings.Repeat(" ", spacing) + right)
}

// ProgramStatus forwards status updates to a running bubbletea program.
type ProgramStatus struct {
	send    func(tea.Msg)
	current string
	mu      sync.Mutex
}

// NewProgramStatus creates a reporter sending MsgStatus through send,
// usually (*tea.Program).Send.
func NewProgramStatus(send func(tea.Msg)) *ProgramStatus {
	return &ProgramStatus{send: send}
}

// Status returns the last status.
func (p *ProgramStatus) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SetStatus records msg and sends it to the program.
func (p *ProgramStatus) SetStatus(msg string) {
	p.mu.Lock()
	p.current = msg
	p.mu.Unlock()
	p.send(MsgStatus{Text: msg})
}
