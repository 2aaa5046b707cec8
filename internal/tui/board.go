package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/usecase"
)

// BoardDeps holds the use cases driven by the status board.
type BoardDeps struct {
	Load  *usecase.LoadDashboard
	Move  *usecase.MoveIssue
	Clock domain.Clock
}

// boardColumn is a rendered snapshot of one QA status column.
// The board itself is only read from Update so that commands may mutate it.
type boardColumn struct {
	status string
	issues []domain.TrackerIssue
	teams  []string
}

// BoardModel shows release issues in one column per QA status.
type BoardModel struct {
	// Dependencies (pointers first for alignment)
	deps  BoardDeps
	board *domain.Board
	err   error

	// Snapshot
	columns    []boardColumn
	filters    []string
	labels     []string
	completion string

	// Components
	keys       KeyMap
	styles     Styles
	help       help.Model
	statusLine *StatusLine

	status      string
	currentUser string

	mode         Mode
	group        Grouping
	filter       int // 0 shows every issue, i shows filters[i-1]
	column       int
	row          int
	statusCursor int
	width        int
	height       int
}

// NewBoardModel creates the status board for release labels.
func NewBoardModel(deps BoardDeps, labels []string) *BoardModel {
	if deps.Clock == nil {
		deps.Clock = domain.RealClock{}
	}
	m := &BoardModel{
		deps:   deps,
		labels: labels,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
		help:   help.New(),
		mode:   ModeBusy,
		status: "Loading...",
	}
	m.statusLine = NewStatusLine(0, &m.styles)
	return m
}

// Init starts loading the board.
func (m *BoardModel) Init() tea.Cmd {
	return m.load()
}

func (m *BoardModel) load() tea.Cmd {
	uc := m.deps.Load
	labels := m.labels
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), usecase.LoadDashboardInput{Labels: labels})
		return MsgBoardLoaded{Output: out, Err: err}
	}
}

func (m *BoardModel) move(key, status string) tea.Cmd {
	uc := m.deps.Move
	in := usecase.MoveIssueInput{
		Board:       m.board,
		Key:         key,
		Status:      status,
		CurrentUser: m.currentUser,
	}
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), in)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgIssueMoved{Issue: out.Issue}
	}
}

// Update handles messages.
func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusLine.SetWidth(msg.Width)
		return m, nil

	case MsgStatus:
		m.status = msg.Text
		return m, nil

	case MsgError:
		m.err = msg.Err
		m.mode = ModeNormal
		return m, nil

	case MsgBoardLoaded:
		m.mode = ModeNormal
		m.err = msg.Err
		if msg.Output != nil {
			m.board = msg.Output.Board
			m.currentUser = msg.Output.CurrentUser
			m.refresh()
		}
		return m, nil

	case MsgIssueMoved:
		m.mode = ModeNormal
		m.err = nil
		m.refresh()
		m.follow(msg.Issue.Key)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *BoardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode { //nolint:exhaustive // Remaining modes use the board keys
	case ModeBusy:
		return m, nil
	case ModeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.mode = ModeNormal
		}
		return m, nil
	case ModeMove:
		return m.handleMoveKey(msg)
	}

	if m.board == nil {
		if key.Matches(msg, m.keys.Refresh) {
			m.mode = ModeBusy
			return m, m.load()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
	case key.Matches(msg, m.keys.Left):
		if m.column > 0 {
			m.column--
			m.clampRow()
		}
	case key.Matches(msg, m.keys.Right):
		if m.column < len(m.columns)-1 {
			m.column++
			m.clampRow()
		}
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampRow()
	case key.Matches(msg, m.keys.Group):
		if m.group == GroupByTeam {
			m.group = GroupByMember
		} else {
			m.group = GroupByTeam
		}
		m.filter = 0
		m.refresh()
	case key.Matches(msg, m.keys.NextFilter):
		m.filter = (m.filter + 1) % (len(m.filters) + 1)
		m.refresh()
	case key.Matches(msg, m.keys.PrevFilter):
		m.filter = (m.filter + len(m.filters)) % (len(m.filters) + 1)
		m.refresh()
	case key.Matches(msg, m.keys.Refresh):
		m.err = nil
		m.mode = ModeBusy
		return m, m.load()
	case key.Matches(msg, m.keys.Move):
		if _, ok := m.Selected(); ok {
			m.statusCursor = m.column
			m.mode = ModeMove
		}
	}
	return m, nil
}

func (m *BoardModel) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
	case key.Matches(msg, m.keys.Up):
		if m.statusCursor > 0 {
			m.statusCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.statusCursor < len(m.columns)-1 {
			m.statusCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		issue, ok := m.Selected()
		if !ok {
			m.mode = ModeNormal
			return m, nil
		}
		m.mode = ModeBusy
		return m, m.move(issue.Key, m.columns[m.statusCursor].status)
	}
	return m, nil
}

func (m *BoardModel) index() *domain.IssueIndex {
	if m.group == GroupByMember {
		return m.board.ByMember
	}
	return m.board.ByTeam
}

// refresh rebuilds the column snapshot from the board.
func (m *BoardModel) refresh() {
	if m.board == nil {
		return
	}
	idx := m.index()
	current := ""
	if m.filter > 0 && m.filter <= len(m.filters) {
		current = m.filters[m.filter-1]
	}
	m.filters = idx.Keys()
	m.filter = m.filterIndex(current)

	var issues []domain.TrackerIssue
	if m.filter == 0 {
		issues = idx.All()
	} else {
		issues = idx.Issues(m.filters[m.filter-1])
	}

	cols := m.board.Columns(issues)
	statuses := m.board.Statuses()
	m.columns = make([]boardColumn, 0, len(statuses))
	for _, s := range statuses {
		col := boardColumn{status: s, issues: cols[s]}
		for _, issue := range col.issues {
			col.teams = append(col.teams, m.board.TeamOf(issue))
		}
		m.columns = append(m.columns, col)
	}
	m.completion = m.board.Completion(issues).String()
	if m.column >= len(m.columns) {
		m.column = max(0, len(m.columns)-1)
	}
	m.clampRow()
}

// follow moves the cursor to the issue with key.
func (m *BoardModel) follow(key string) {
	for c, col := range m.columns {
		for r, issue := range col.issues {
			if issue.Key == key {
				m.column, m.row = c, r
				return
			}
		}
	}
}

func (m *BoardModel) clampRow() {
	if m.column >= len(m.columns) {
		m.row = 0
		return
	}
	n := len(m.columns[m.column].issues)
	if m.row >= n {
		m.row = max(0, n-1)
	}
}

// Selected returns the issue under the cursor.
func (m *BoardModel) Selected() (domain.TrackerIssue, bool) {
	if m.column >= len(m.columns) {
		return domain.TrackerIssue{}, false
	}
	issues := m.columns[m.column].issues
	if m.row >= len(issues) {
		return domain.TrackerIssue{}, false
	}
	return issues[m.row], true
}

// FilterName returns the active team or member filter.
func (m *BoardModel) FilterName() string {
	if m.filter == 0 || m.filter > len(m.filters) {
		return "All"
	}
	return m.filters[m.filter-1]
}

// Mode returns the current UI mode.
func (m *BoardModel) Mode() Mode {
	return m.mode
}

// Err returns the last error.
func (m *BoardModel) Err() error {
	return m.err
}

// View renders the board.
func (m *BoardModel) View() string {
	header := m.styles.Header.Render(
		m.styles.HeaderText.Render("git-qa status") + "  " +
			m.styles.HeaderInfo.Render(fmt.Sprintf("labels: %s  %s: %s  %s",
				strings.Join(m.labels, ", "), m.group, m.FilterName(), m.completion)),
	)

	var body string
	switch {
	case m.mode == ModeHelp:
		body = m.help.FullHelpView(m.keys.BoardHelp().FullHelp())
	case m.mode == ModeMove:
		body = m.moveView()
	case len(m.columns) == 0:
		body = m.styles.HeaderInfo.Render("No issues")
	default:
		body = m.columnsView() + "\n" + m.detailView()
	}

	footer := m.statusLine.Render(m.statusInfo())
	if m.err != nil {
		footer = m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n" + footer
	}
	return m.styles.App.Render(header + "\n" + body + "\n" + footer)
}

func (m *BoardModel) columnWidth() int {
	if m.width == 0 || len(m.columns) == 0 {
		return 30
	}
	return max(16, m.width/len(m.columns)-4)
}

func (m *BoardModel) columnsView() string {
	width := m.columnWidth()
	rendered := make([]string, 0, len(m.columns))
	for c, col := range m.columns {
		lines := []string{
			m.styles.StatusStyle(c, len(m.columns)).Render(fmt.Sprintf("%s (%d)", col.status, len(col.issues))),
		}
		for r, issue := range col.issues {
			text := issue.Key + " " + escapeNewlines(issue.Summary)
			if runewidth.StringWidth(text) > width {
				text = runewidth.Truncate(text, width-3, "...")
			}
			if c == m.column && r == m.row {
				lines = append(lines, m.styles.IssueSelected.Render(text))
			} else {
				lines = append(lines, m.styles.IssueKey.Render(text))
			}
		}
		style := m.styles.Column
		if c == m.column {
			style = m.styles.ColumnFocused
		}
		rendered = append(rendered, style.Width(width).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *BoardModel) detailView() string {
	issue, ok := m.Selected()
	if !ok {
		return ""
	}
	team := m.columns[m.column].teams[m.row]
	assignee := issue.AssigneeName()
	if assignee == "" {
		assignee = "Unassigned"
	}
	parts := []string{
		m.styles.DetailTitle.Render(issue.Key) + " " + m.styles.DetailValue.Render(escapeNewlines(issue.Summary)),
		m.styles.DetailLabel.Render("Team") + team,
		m.styles.DetailLabel.Render("Assignee") + assignee,
		m.styles.DetailLabel.Render("Status") + issue.Status.Name,
	}
	if !issue.Updated.IsZero() {
		elapsed := m.deps.Clock.Now().Sub(issue.Updated)
		parts = append(parts, m.styles.DetailLabel.Render("Updated")+domain.FormatElapsed(elapsed)+" ago")
	}
	return strings.Join(parts, "\n")
}

func (m *BoardModel) moveView() string {
	issue, _ := m.Selected()
	lines := []string{m.styles.DialogTitle.Render("Move " + issue.Key)}
	for i, col := range m.columns {
		cursor := "  "
		if i == m.statusCursor {
			cursor = m.styles.Indicator.Render("> ")
		}
		lines = append(lines, cursor+m.styles.StatusStyle(i, len(m.columns)).Render(col.status))
	}
	return m.styles.Dialog.Render(strings.Join(lines, "\n"))
}

func (m *BoardModel) statusInfo() StatusLineInfo {
	info := StatusLineInfo{Status: m.status}
	switch m.mode { //nolint:exhaustive // Other modes show no hints
	case ModeNormal:
		info.KeyHints = []KeyHint{
			{Key: "h/l", Desc: "column"},
			{Key: "j/k", Desc: "nav"},
			{Key: "m", Desc: "move"},
			{Key: "g", Desc: "group"},
			{Key: "[/]", Desc: "filter"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		}
	case ModeMove:
		info.KeyHints = []KeyHint{
			{Key: "enter", Desc: "select"},
			{Key: "esc", Desc: "cancel"},
		}
	}
	return info
}

// filterIndex returns the position of name in the filter cycle, or 0.
func (m *BoardModel) filterIndex(name string) int {
	if name == "" {
		return 0
	}
	if i := slices.Index(m.filters, name); i >= 0 {
		return i + 1
	}
	return 0
}
