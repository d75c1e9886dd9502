package out

import "context"

// RawClassification is the unvalidated output of the external model.
// Pointer fields distinguish "model said false/0" from "model omitted the
// field"; the orchestrator clamps and defaults every field before use.
type RawClassification struct {
	Category         string            `json:"category"`
	Sentiment        string            `json:"sentiment"`
	Intent           string            `json:"intent"`
	Urgency          *int              `json:"urgency"`
	IsProblem        *bool             `json:"is_problem"`
	NeedsResponse    *bool             `json:"needs_response"`
	AutoReplyAllowed *bool             `json:"auto_reply_allowed"`
	Summary          string            `json:"summary"`
	Entities         map[string]string `json:"entities"`
}

// MessageClassifier is the port for the external model-based classifier.
// Implementations may fail for any reason (network, timeout, malformed
// output); callers must treat every error as a signal to fall back to the
// deterministic heuristics engine.
type MessageClassifier interface {
	ClassifyMessage(ctx context.Context, text string) (*RawClassification, error)
}

// ReplySender delivers an automated reply back to the originating channel.
type ReplySender interface {
	SendReply(ctx context.Context, channelExternalID, text string) error
}

// ChannelLocker serializes the case-grouping check-then-act sequence per
// channel so two concurrent messages cannot both create a case.
type ChannelLocker interface {
	// Acquire returns true when the lock was obtained. A false return means
	// another worker holds the channel; callers should retry or proceed in
	// grouped mode.
	Acquire(ctx context.Context, channelID int64) (bool, error)
	Release(ctx context.Context, channelID int64)
}
