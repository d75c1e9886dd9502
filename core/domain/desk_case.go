package domain

import "time"

// CaseStatus enumerates the case lifecycle.
type CaseStatus string

const (
	CaseStatusOpen          CaseStatus = "open"
	CaseStatusInProgress    CaseStatus = "in_progress"
	CaseStatusWaitingClient CaseStatus = "waiting_client"
	CaseStatusResolved      CaseStatus = "resolved"
	CaseStatusClosed        CaseStatus = "closed"
)

// IsTerminal reports whether no further messages should be grouped into
// a case in this status.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusResolved || s == CaseStatusClosed
}

// CanTransitionTo validates a status change requested through the API.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case CaseStatusOpen:
		return next == CaseStatusInProgress || next == CaseStatusClosed
	case CaseStatusInProgress:
		return next == CaseStatusWaitingClient || next == CaseStatusResolved || next == CaseStatusClosed
	case CaseStatusWaitingClient:
		return next == CaseStatusInProgress || next == CaseStatusResolved || next == CaseStatusClosed
	case CaseStatusResolved:
		return next == CaseStatusClosed || next == CaseStatusOpen // reopen
	case CaseStatusClosed:
		return next == CaseStatusOpen // reopen
	}
	return false
}

// Case is a trackable support issue grouping one or more related messages.
type Case struct {
	ID        int64        `json:"id"`
	ChannelID int64        `json:"channel_id"`
	Title     string       `json:"title"`
	Status    CaseStatus   `json:"status"`
	Priority  CasePriority `json:"priority"`
	Severity  CaseSeverity `json:"severity"`
	Category  Category     `json:"category"`
	Tags      []string     `json:"tags,omitempty"`

	FirstMessageID int64 `json:"first_message_id"`
	MessageCount   int   `json:"message_count"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// GroupingWindow is the look-back window for appending a new problem
// message into an already-open case on the same channel.
const GroupingWindow = 10 * time.Minute

// TicketOutcome reports what the triage evaluator did with a message.
// Persistence failures surface here as Failed, never as a pipeline error.
type TicketOutcome struct {
	Action   TicketAction `json:"action"`
	CaseID   int64        `json:"case_id,omitempty"`
	Priority CasePriority `json:"priority,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

type TicketAction string

const (
	TicketSkippedExisting TicketAction = "skipped_existing"
	TicketGrouped         TicketAction = "grouped"
	TicketCreated         TicketAction = "created"
	TicketNotNeeded       TicketAction = "not_needed"
	TicketFailed          TicketAction = "failed"
)

// CaseFilter narrows case listings.
type CaseFilter struct {
	ChannelID *int64        `json:"channel_id,omitempty"`
	Status    *CaseStatus   `json:"status,omitempty"`
	Priority  *CasePriority `json:"priority,omitempty"`
	Category  *Category     `json:"category,omitempty"`
}
