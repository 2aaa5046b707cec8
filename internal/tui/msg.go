package tui

import (
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/usecase"
)

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgStatus is sent whenever the live status line changes.
type MsgStatus struct {
	Text string
}

func (MsgStatus) sealed() {}

// MsgError is sent when an operation fails.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgResolveStarted is sent once the commit range is known.
type MsgResolveStarted struct {
	next  func() (usecase.CandidateEvent, error, bool)
	stop  func()
	Total int
}

func (MsgResolveStarted) sealed() {}

// MsgCandidate is sent for every processed commit.
type MsgCandidate struct {
	Event usecase.CandidateEvent
}

func (MsgCandidate) sealed() {}

// MsgCandidatesDone is sent when every commit has been processed.
type MsgCandidatesDone struct{}

func (MsgCandidatesDone) sealed() {}

// MsgCreateFinished is sent when issue creation stops.
// Err is set when creation halted early; Output still holds what was created.
type MsgCreateFinished struct {
	Output *usecase.CreateIssuesOutput
	Err    error
}

func (MsgCreateFinished) sealed() {}

// MsgBoardLoaded is sent when the status board has been loaded.
// Err is set when the search stopped early; Output may hold a partial board.
type MsgBoardLoaded struct {
	Output *usecase.LoadDashboardOutput
	Err    error
}

func (MsgBoardLoaded) sealed() {}

// MsgIssueMoved is sent when an issue changed status.
type MsgIssueMoved struct {
	Issue domain.TrackerIssue
}

func (MsgIssueMoved) sealed() {}
