package domain

import "time"

// Channel is a conversational context mapped to a messaging-platform chat.
// It owns messages, an awaiting-reply flag and a stored priority that the
// triage evaluator may escalate but never downgrade.
type Channel struct {
	ID             int64        `json:"id"`
	ExternalID     string       `json:"external_id"` // telegram chat id
	Title          string       `json:"title"`
	Priority       CasePriority `json:"priority"`
	AwaitingReply  bool         `json:"awaiting_reply"`
	LastMessageAt  *time.Time   `json:"last_message_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
