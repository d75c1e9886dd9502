package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/core/service/classification"
	"desk_server/core/service/triage"
)

// ClassifyProcessor runs the classification pipeline and triage policy for
// queued messages.
type ClassifyProcessor struct {
	pipeline *classification.Pipeline
	triage   *triage.Evaluator
	messages out.MessageRepository
	log      zerolog.Logger
}

func NewClassifyProcessor(
	pipeline *classification.Pipeline,
	triageEval *triage.Evaluator,
	messages out.MessageRepository,
	log zerolog.Logger,
) *ClassifyProcessor {
	return &ClassifyProcessor{
		pipeline: pipeline,
		triage:   triageEval,
		messages: messages,
		log:      log.With().Str("component", "classify_processor").Logger(),
	}
}

// ProcessClassify classifies one message, projects the result onto its row
// and applies the downstream triage policy. Classification itself never
// fails; only persistence errors are returned for retry.
func (p *ClassifyProcessor) ProcessClassify(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ClassifyPayload](msg)
	if err != nil {
		return fmt.Errorf("invalid classify payload: %w", err)
	}

	record, err := p.messages.GetByID(ctx, payload.MessageID)
	if err != nil {
		return fmt.Errorf("load message %d: %w", payload.MessageID, err)
	}

	result := p.pipeline.Classify(ctx, record.Text)

	if err := p.messages.UpdateClassification(ctx, record.ID, result); err != nil {
		return fmt.Errorf("project classification onto message %d: %w", record.ID, err)
	}

	outcome := p.triage.Evaluate(ctx, record, result)

	p.log.Info().
		Int64("message_id", record.ID).
		Int64("channel_id", record.ChannelID).
		Str("category", string(result.Category)).
		Str("intent", string(result.Intent)).
		Int("urgency", result.Urgency).
		Bool("is_problem", result.IsProblem).
		Str("source", string(result.Source)).
		Str("ticket_action", string(outcome.Action)).
		Msg("message classified")

	if outcome.Action == domain.TicketFailed {
		p.log.Warn().
			Int64("message_id", record.ID).
			Str("reason", outcome.Reason).
			Msg("ticket decision failed")
	}
	return nil
}
