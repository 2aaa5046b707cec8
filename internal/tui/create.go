package tui

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/usecase"
)

// CreateDeps holds the use cases driven by the create screen.
type CreateDeps struct {
	Resolve *usecase.ResolveCandidates
	Toggle  *usecase.ToggleAssignment
	Create  *usecase.CreateIssues
	Repo    *domain.RepoConfig
}

// CreateModel lists the candidates of a commit range, lets the user assign
// teams and creates the QA issues.
type CreateModel struct {
	// Dependencies (pointers first for alignment)
	deps CreateDeps
	err  error
	next func() (usecase.CandidateEvent, error, bool)
	stop func()

	// State
	items  []candidateItem
	teams  []string
	labels []string
	input  usecase.ResolveCandidatesInput

	// Components
	keys       KeyMap
	styles     Styles
	help       help.Model
	list       list.Model
	statusLine *StatusLine

	status   string
	progress string

	mode       Mode
	focus      Focus
	teamCursor int
	total      int
	width      int
	height     int
	pulling    bool // A pull command is in flight
}

// NewCreateModel creates the create screen for a commit range.
// Issues get labels once created.
func NewCreateModel(deps CreateDeps, input usecase.ResolveCandidatesInput, labels []string) *CreateModel {
	styles := DefaultStyles()
	l := list.New([]list.Item{}, newCandidateDelegate(deps.Repo, styles), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := &CreateModel{
		deps:   deps,
		teams:  deps.Repo.TeamNames(),
		labels: labels,
		input:  input,
		keys:   DefaultKeyMap(),
		styles: styles,
		help:   help.New(),
		list:   l,
		mode:   ModeBusy,
		status: "Resolving candidates...",
	}
	m.statusLine = NewStatusLine(0, &m.styles)
	return m
}

// Init starts resolving candidates.
func (m *CreateModel) Init() tea.Cmd {
	return m.resolve()
}

// resolve lists the commit range and prepares the candidate stream.
func (m *CreateModel) resolve() tea.Cmd {
	uc := m.deps.Resolve
	input := m.input
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), input)
		if err != nil {
			return MsgError{Err: err}
		}
		next, stop := iter.Pull2(out.Events)
		return MsgResolveStarted{next: next, stop: stop, Total: out.Total}
	}
}

// pull returns a command resolving the next commit.
func (m *CreateModel) pull() tea.Cmd {
	m.pulling = true
	next := m.next
	return func() tea.Msg {
		ev, err, ok := next()
		if !ok {
			return MsgCandidatesDone{}
		}
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgCandidate{Event: ev}
	}
}

// create returns a command creating the issues of every assigned candidate.
func (m *CreateModel) create() tea.Cmd {
	uc := m.deps.Create
	candidates := make([]*domain.Candidate, 0, len(m.items))
	created := make(map[*domain.Candidate][]string)
	for _, item := range m.items {
		if item.pending(m.deps.Repo) {
			candidates = append(candidates, item.candidate)
			if len(item.issues) > 0 {
				created[item.candidate] = item.createdTeams()
			}
		}
	}
	labels := m.labels
	return func() tea.Msg {
		out, err := uc.Execute(context.Background(), usecase.CreateIssuesInput{
			Created:    created,
			Candidates: candidates,
			Labels:     labels,
		})
		return MsgCreateFinished{Output: out, Err: err}
	}
}

// Update handles messages.
func (m *CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusLine.SetWidth(msg.Width)
		m.list.SetSize(m.listWidth(), m.bodyHeight())
		return m, nil

	case MsgStatus:
		m.status = msg.Text
		return m, nil

	case MsgError:
		m.pulling = false
		m.err = msg.Err
		m.mode = ModeNormal
		return m, nil

	case MsgResolveStarted:
		m.next = msg.next
		m.stop = msg.stop
		m.total = msg.Total
		if msg.Total == 0 {
			m.status = domain.ErrNoCandidates.Error()
			m.mode = ModeNormal
			return m, nil
		}
		m.progress = fmt.Sprintf("0 / %d", msg.Total)
		return m, m.pull()

	case MsgCandidate:
		m.pulling = false
		m.progress = msg.Event.Progress()
		if msg.Event.Candidate != nil {
			m.items = append(m.items, candidateItem{
				candidate: msg.Event.Candidate,
				commit:    msg.Event.Commit,
			})
			m.syncList()
		}
		return m, m.pull()

	case MsgCandidatesDone:
		m.pulling = false
		m.next = nil
		m.mode = ModeNormal
		m.status = fmt.Sprintf("%d candidates", len(m.items))
		if len(m.items) == 0 {
			m.status = domain.ErrNoCandidates.Error()
		}
		return m, nil

	case MsgCreateFinished:
		m.applyCreated(msg.Output)
		if msg.Err != nil {
			m.err = msg.Err
			m.mode = ModeNormal
			return m, nil
		}
		m.mode = ModeDone
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *CreateModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		// The iterator must not be stopped while another goroutine resumes it.
		if m.stop != nil && !m.pulling {
			m.stop()
		}
		return m, tea.Quit
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.mode = ModeNormal
		}
		return m, nil
	}
	if m.mode == ModeBusy && len(m.items) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeNormal {
			m.mode = ModeHelp
		}
	case key.Matches(msg, m.keys.Focus):
		if m.focus == FocusCandidates {
			m.focus = FocusTeams
		} else {
			m.focus = FocusCandidates
		}
	case key.Matches(msg, m.keys.Up):
		if m.focus == FocusTeams {
			m.teamCursor = max(0, m.teamCursor-1)
		} else {
			m.list.CursorUp()
		}
	case key.Matches(msg, m.keys.Down):
		if m.focus == FocusTeams {
			m.teamCursor = min(len(m.teams)-1, m.teamCursor+1)
		} else {
			m.list.CursorDown()
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.mode == ModeNormal {
			m.toggle()
		}
	case key.Matches(msg, m.keys.Create):
		if m.mode != ModeNormal {
			return m, nil
		}
		if !m.hasAssigned() {
			m.status = "No candidates assigned"
			return m, nil
		}
		m.err = nil
		m.mode = ModeBusy
		return m, m.create()
	}
	return m, nil
}

// toggle flips the team under the cursor for the selected candidate.
func (m *CreateModel) toggle() {
	item, ok := m.selected()
	if !ok || len(m.teams) == 0 || len(item.issues) > 0 {
		return
	}
	team := m.teams[m.teamCursor]
	current := domain.AssignmentsFor(item.candidate, m.deps.Repo)
	_, err := m.deps.Toggle.Execute(context.Background(), usecase.ToggleAssignmentInput{
		Candidate:  item.candidate,
		CommitHash: item.commit.Hash,
		Team:       team,
		Assigned:   !current[team],
	})
	if err != nil {
		m.err = err
		return
	}
	m.syncList()
}

func (m *CreateModel) hasAssigned() bool {
	for _, item := range m.items {
		if item.pending(m.deps.Repo) {
			return true
		}
	}
	return false
}

// applyCreated adds created issues to their list items.
func (m *CreateModel) applyCreated(out *usecase.CreateIssuesOutput) {
	if out == nil {
		return
	}
	for _, r := range out.Results {
		for i := range m.items {
			if m.items[i].candidate == r.Candidate {
				m.items[i].issues = append(m.items[i].issues, r.Issues...)
			}
		}
	}
	m.syncList()
}

func (m *CreateModel) syncList() {
	items := make([]list.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	m.list.SetItems(items)
}

func (m *CreateModel) selected() (candidateItem, bool) {
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.items) {
		return candidateItem{}, false
	}
	return m.items[idx], true
}

// Mode returns the current UI mode.
func (m *CreateModel) Mode() Mode {
	return m.mode
}

// Err returns the last error.
func (m *CreateModel) Err() error {
	return m.err
}

func (m *CreateModel) listWidth() int {
	return max(30, m.width/2)
}

func (m *CreateModel) bodyHeight() int {
	return max(5, m.height-6)
}

// View renders the screen.
func (m *CreateModel) View() string {
	header := m.styles.Header.Render(
		m.styles.HeaderText.Render("git-qa create") + "  " +
			m.styles.HeaderInfo.Render(fmt.Sprintf("%s..%s  labels: %s",
				m.input.Previous, m.input.Current, strings.Join(m.labels, ", "))),
	)

	if m.mode == ModeHelp {
		return m.styles.App.Render(header + "\n" + m.help.FullHelpView(m.keys.CreateHelp().FullHelp()))
	}

	listPane := m.styles.Pane
	detailPane := m.styles.Pane
	if m.focus == FocusCandidates {
		listPane = m.styles.PaneFocused
	} else {
		detailPane = m.styles.PaneFocused
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listPane.Render(m.list.View()),
		detailPane.Render(m.detailView()),
	)

	var footer []string
	if m.progress != "" {
		footer = append(footer, m.styles.Progress.Render("Progress: "+m.progress))
	}
	if m.err != nil {
		footer = append(footer, m.styles.ErrorMsg.Render("Error: "+m.err.Error()))
	}
	footer = append(footer, m.statusLine.Render(m.statusInfo()))

	return m.styles.App.Render(header + "\n" + body + "\n" + strings.Join(footer, "\n"))
}

func (m *CreateModel) detailView() string {
	item, ok := m.selected()
	if !ok {
		return m.styles.HeaderInfo.Render("No candidate selected")
	}
	c := item.candidate

	label := func(name, value string) string {
		return m.styles.DetailLabel.Render(name) + m.styles.DetailValue.Render(value)
	}

	lines := []string{
		m.styles.DetailTitle.Render(c.DisplayName()),
		m.styles.DetailValue.Render(escapeNewlines(c.Title)),
		"",
		label("URL", c.URL),
	}
	if c.User != "" {
		lines = append(lines, label("Author", c.User))
	}
	if names := c.LabelNames(); len(names) > 0 {
		lines = append(lines, label("Labels", m.styles.ItemLabel.Render(strings.Join(names, ", "))))
	}

	lines = append(lines, "", m.styles.DetailTitle.Render("Teams"))
	assignments := domain.AssignmentsFor(c, m.deps.Repo)
	for i, team := range m.teams {
		cursor := "  "
		if m.focus == FocusTeams && i == m.teamCursor {
			cursor = m.styles.Indicator.Render("> ")
		}
		if assignments[team] {
			lines = append(lines, cursor+m.styles.TeamOn.Render("[x] "+team))
		} else {
			lines = append(lines, cursor+m.styles.TeamOff.Render("[ ] "+team))
		}
	}

	if len(item.issues) > 0 {
		lines = append(lines, "", m.styles.DetailTitle.Render("Issues"))
		for _, issue := range item.issues {
			line := issue.Key + "  " + issue.Team
			if issue.Member != "" {
				line += " (" + issue.Member + ")"
			}
			lines = append(lines, m.styles.ItemCreated.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *CreateModel) statusInfo() StatusLineInfo {
	info := StatusLineInfo{Status: m.status}
	switch m.mode { //nolint:exhaustive // Other modes show no hints
	case ModeNormal:
		info.KeyHints = []KeyHint{
			{Key: "j/k", Desc: "nav"},
			{Key: "tab", Desc: "pane"},
			{Key: "space", Desc: "toggle"},
			{Key: "c", Desc: "create"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		}
	case ModeDone, ModeBusy:
		info.KeyHints = []KeyHint{
			{Key: "j/k", Desc: "nav"},
			{Key: "q", Desc: "quit"},
		}
	}
	return info
}
