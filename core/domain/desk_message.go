package domain

import "time"

// Message is an inbound or outbound chat message owned by a channel.
// The classification core treats it as read-only input; classification
// fields are projections written back after the pipeline runs.
type Message struct {
	ID         int64      `json:"id"`
	ChannelID  int64      `json:"channel_id"`
	ExternalID string     `json:"external_id"` // platform message id (telegram)
	SenderID   int64      `json:"sender_id"`
	SenderName string     `json:"sender_name,omitempty"`
	Role       SenderRole `json:"role"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`

	// Projected classification columns
	Category           *Category  `json:"category,omitempty"`
	Sentiment          *Sentiment `json:"sentiment,omitempty"`
	Intent             *Intent    `json:"intent,omitempty"`
	Urgency            *int       `json:"urgency,omitempty"`
	IsProblem          bool       `json:"is_problem"`
	Summary            *string    `json:"summary,omitempty"`
	Entities           map[string]string `json:"entities,omitempty"`
	AutoReplyCandidate bool       `json:"auto_reply_candidate"`

	// CaseID links the message to the case it was ticketed into, if any.
	CaseID *int64 `json:"case_id,omitempty"`
}

// MinMessageLength is the minimum text length accepted by ingestion.
// Shorter payloads are rejected before the classification core runs.
const MinMessageLength = 3

// MessageFilter narrows message listings.
type MessageFilter struct {
	ChannelID *int64      `json:"channel_id,omitempty"`
	Role      *SenderRole `json:"role,omitempty"`
	Category  *Category   `json:"category,omitempty"`
	OnlyProblems bool     `json:"only_problems,omitempty"`
	Range     DateRange   `json:"range"`
}
