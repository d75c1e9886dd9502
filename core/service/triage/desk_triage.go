// Package triage turns a classification result plus channel state into
// concrete side effects: ticket creation or grouping, channel priority
// escalation, awaiting-reply bookkeeping and automated replies.
package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/pkg/logger"
)

// Evaluator applies the downstream triage policy to classified messages.
// Every persistence failure is caught and reported through TicketOutcome;
// triage never fails the message-processing pipeline.
type Evaluator struct {
	messages out.MessageRepository
	cases    out.CaseRepository
	channels out.ChannelRepository
	locker   out.ChannelLocker
	replies  out.ReplySender // optional, nil disables auto-replies
}

func NewEvaluator(
	messages out.MessageRepository,
	cases out.CaseRepository,
	channels out.ChannelRepository,
	locker out.ChannelLocker,
	replies out.ReplySender,
) *Evaluator {
	return &Evaluator{
		messages: messages,
		cases:    cases,
		channels: channels,
		locker:   locker,
		replies:  replies,
	}
}

// Evaluate runs the full triage policy for one classified message:
// channel flag updates, priority escalation, the ticket decision and,
// when eligible, an automated reply. The returned outcome is always
// non-nil.
func (e *Evaluator) Evaluate(ctx context.Context, msg *domain.Message, result *domain.ClassificationResult) *domain.TicketOutcome {
	e.updateChannelState(ctx, msg, result)

	outcome := e.decideTicket(ctx, msg, result)

	if e.shouldAutoReply(msg, result) {
		if err := e.sendAutoReply(ctx, msg, result); err != nil {
			logger.WithError(err).WithField("channel_id", msg.ChannelID).
				Warn("auto-reply failed")
		}
	}

	return outcome
}

// decideTicket implements the ticket decision. A ticket is warranted when
// the message reports a problem that needs a response with urgency >= 2;
// warranted messages are attached to the message's existing case, grouped
// into a recently opened case on the channel, or open a new case.
func (e *Evaluator) decideTicket(ctx context.Context, msg *domain.Message, result *domain.ClassificationResult) *domain.TicketOutcome {
	if msg.CaseID != nil {
		return &domain.TicketOutcome{Action: domain.TicketSkippedExisting, CaseID: *msg.CaseID}
	}
	if !ticketWarranted(result) {
		return &domain.TicketOutcome{Action: domain.TicketNotNeeded}
	}

	// The lookup-then-insert below is a critical section per channel:
	// without it two concurrent messages both see "no recent case" and
	// open duplicate tickets.
	if e.locker != nil {
		if acquired := e.acquireChannelLock(ctx, msg.ChannelID); acquired {
			defer e.locker.Release(ctx, msg.ChannelID)
		}
	}

	cutoff := time.Now().Add(-domain.GroupingWindow)
	recent, err := e.cases.FindRecentOpen(ctx, msg.ChannelID, cutoff)
	if err != nil {
		return failedOutcome("recent case lookup: %v", err)
	}

	if recent != nil && !recent.Status.IsTerminal() {
		staffReplied, err := e.messages.HasStaffMessageSince(ctx, msg.ChannelID, recent.CreatedAt)
		if err != nil {
			return failedOutcome("staff reply lookup: %v", err)
		}
		if !staffReplied {
			return e.groupInto(ctx, msg, recent)
		}
	}

	return e.createCase(ctx, msg, result)
}

const (
	lockRetries    = 3
	lockRetryDelay = 50 * time.Millisecond
)

// acquireChannelLock obtains the per-channel lock, waiting out a holder
// with a bounded retry. When the retries are exhausted the holder has had
// time to commit its case, so falling through to the recent-case lookup
// resolves to grouping rather than a duplicate create. A lock backend
// error skips the wait entirely: blocking ticket creation on Redis is
// worse than a mergeable duplicate.
func (e *Evaluator) acquireChannelLock(ctx context.Context, channelID int64) bool {
	for attempt := 0; ; attempt++ {
		acquired, err := e.locker.Acquire(ctx, channelID)
		if err != nil {
			logger.WithError(err).WithField("channel_id", channelID).
				Warn("channel lock unavailable, proceeding unlocked")
			return false
		}
		if acquired {
			return true
		}
		if attempt >= lockRetries {
			logger.WithField("channel_id", channelID).
				Warn("channel lock still held, proceeding in grouped mode")
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(lockRetryDelay):
		}
	}
}

// ticketWarranted is the single gate for automatic ticket creation.
func ticketWarranted(result *domain.ClassificationResult) bool {
	return result.IsProblem && result.NeedsResponse && result.Urgency >= 2
}

func (e *Evaluator) groupInto(ctx context.Context, msg *domain.Message, c *domain.Case) *domain.TicketOutcome {
	if err := e.cases.AppendMessage(ctx, c.ID); err != nil {
		return failedOutcome("append to case %d: %v", c.ID, err)
	}
	if err := e.messages.LinkCase(ctx, msg.ID, c.ID); err != nil {
		return failedOutcome("link message to case %d: %v", c.ID, err)
	}
	logger.WithFields(map[string]any{"case_id": c.ID, "message_id": msg.ID}).
		Debug("message grouped into recent case")
	return &domain.TicketOutcome{Action: domain.TicketGrouped, CaseID: c.ID, Priority: c.Priority}
}

func (e *Evaluator) createCase(ctx context.Context, msg *domain.Message, result *domain.ClassificationResult) *domain.TicketOutcome {
	priority := domain.PriorityForUrgency(result.Urgency)
	c := &domain.Case{
		ChannelID:      msg.ChannelID,
		Title:          caseTitle(result),
		Status:         domain.CaseStatusOpen,
		Priority:       priority,
		Severity:       domain.SeverityForUrgency(result.Urgency),
		Category:       result.Category,
		FirstMessageID: msg.ID,
		MessageCount:   1,
	}
	if err := e.cases.Create(ctx, c); err != nil {
		return failedOutcome("create case: %v", err)
	}
	if err := e.messages.LinkCase(ctx, msg.ID, c.ID); err != nil {
		return failedOutcome("link message to case %d: %v", c.ID, err)
	}
	logger.WithFields(map[string]any{
		"case_id":  c.ID,
		"priority": priority,
		"category": result.Category,
	}).Info("case created")
	return &domain.TicketOutcome{Action: domain.TicketCreated, CaseID: c.ID, Priority: priority}
}

// updateChannelState applies the awaiting-reply flag and priority
// escalation. Failures here are logged and swallowed: channel bookkeeping
// is advisory and must not block ticketing.
func (e *Evaluator) updateChannelState(ctx context.Context, msg *domain.Message, result *domain.ClassificationResult) {
	if !result.NeedsResponse {
		if err := e.channels.SetAwaitingReply(ctx, msg.ChannelID, false); err != nil {
			logger.WithError(err).WithField("channel_id", msg.ChannelID).
				Warn("clearing awaiting-reply failed")
		}
	} else if msg.Role == domain.RoleClient {
		if err := e.channels.SetAwaitingReply(ctx, msg.ChannelID, true); err != nil {
			logger.WithError(err).WithField("channel_id", msg.ChannelID).
				Warn("setting awaiting-reply failed")
		}
	}

	if result.IsProblem && result.Urgency >= 3 {
		atLeast := domain.PriorityHigh
		if result.Urgency >= 4 {
			atLeast = domain.PriorityUrgent
		}
		if err := e.channels.RaisePriority(ctx, msg.ChannelID, atLeast); err != nil {
			logger.WithError(err).WithField("channel_id", msg.ChannelID).
				Warn("channel priority escalation failed")
		}
	}
}

// shouldAutoReply gates automated replies: the classifier marking a
// message auto-reply eligible is necessary but not sufficient, the sender
// must also be a client.
func (e *Evaluator) shouldAutoReply(msg *domain.Message, result *domain.ClassificationResult) bool {
	return e.replies != nil && result.AutoReplyAllowed && msg.Role == domain.RoleClient
}

func (e *Evaluator) sendAutoReply(ctx context.Context, msg *domain.Message, result *domain.ClassificationResult) error {
	text, ok := AutoReplyText(result.Intent, result.Language)
	if !ok {
		return nil
	}
	channel, err := e.channels.GetByID(ctx, msg.ChannelID)
	if err != nil {
		return err
	}
	return e.replies.SendReply(ctx, channel.ExternalID, text)
}

func caseTitle(result *domain.ClassificationResult) string {
	title := strings.TrimSpace(result.Summary)
	if title == "" {
		title = string(result.Category)
	}
	const maxTitle = 120
	runes := []rune(title)
	if len(runes) > maxTitle {
		title = string(runes[:maxTitle])
	}
	return title
}

func failedOutcome(format string, args ...any) *domain.TicketOutcome {
	reason := fmt.Sprintf(format, args...)
	logger.Warn("triage persistence failure: %s", reason)
	return &domain.TicketOutcome{Action: domain.TicketFailed, Reason: reason}
}
