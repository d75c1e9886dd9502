package out

import (
	"context"
	"time"

	"desk_server/core/domain"
)

// ClassifyJob is the unit of work queued by webhook ingestion and consumed
// by the classification worker.
type ClassifyJob struct {
	MessageID  int64             `json:"message_id"`
	ChannelID  int64             `json:"channel_id"`
	Text       string            `json:"text"`
	Role       domain.SenderRole `json:"role"`
	SenderName string            `json:"sender_name,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// MessageProducer enqueues jobs for asynchronous processing.
type MessageProducer interface {
	PublishClassify(ctx context.Context, job *ClassifyJob) error
}
