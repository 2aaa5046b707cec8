package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestProgramStatus(t *testing.T) {
	var sent []tea.Msg
	s := NewProgramStatus(func(msg tea.Msg) { sent = append(sent, msg) })

	s.SetStatus("Loading...")
	s.SetStatus("1 / 2 (50.00%)")

	assert.Equal(t, "1 / 2 (50.00%)", s.Status())
	assert.Equal(t, []tea.Msg{
		MsgStatus{Text: "Loading..."},
		MsgStatus{Text: "1 / 2 (50.00%)"},
	}, sent)
}

func TestStatusLine_Render(t *testing.T) {
	styles := DefaultStyles()
	tests := []struct {
		name     string
		contains []string
		width    int
	}{
		{name: "unbounded", width: 0, contains: []string{"q quit", "Finished"}},
		{name: "wide", width: 80, contains: []string{"q quit", "Finished"}},
		{name: "narrow", width: 20, contains: []string{"...", "Finished"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := NewStatusLine(tt.width, &styles).Render(StatusLineInfo{
				Status: "Finished",
				KeyHints: []KeyHint{
					{Key: "j/k", Desc: "nav"},
					{Key: "q", Desc: "quit"},
				},
			})
			for _, s := range tt.contains {
				assert.Contains(t, line, s)
			}
			if tt.width > 0 {
				assert.Equal(t, tt.width, lipgloss.Width(line))
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "normal", ModeNormal.String())
	assert.Equal(t, "move", ModeMove.String())
	assert.Equal(t, "unknown", Mode(99).String())
	assert.Equal(t, "teams", FocusTeams.String())
	assert.Equal(t, "member", GroupByMember.String())
}
