package worker

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"desk_server/adapter/out/messaging"
)

// StreamHandler bridges the Redis Stream consumer into the worker pool.
// A refused submission leaves the stream entry unacked so it is
// redelivered once the pool drains.
type StreamHandler struct {
	pool *Pool
}

func NewStreamHandler(pool *Pool) *StreamHandler {
	return &StreamHandler{pool: pool}
}

// Handle implements messaging.JobHandler.
func (h *StreamHandler) Handle(ctx context.Context, stream string, data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode job payload: %w", err)
	}

	var msg *Message
	switch stream {
	case messaging.StreamClassify:
		msg = NewMessage(JobClassify, payload)
	default:
		return fmt.Errorf("no handler for stream %s", stream)
	}

	if !h.pool.Submit(msg) {
		return fmt.Errorf("worker pool refused job from %s", stream)
	}
	return nil
}
