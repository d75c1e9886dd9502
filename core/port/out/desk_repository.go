// Package out defines outbound ports (driven ports) for the application.
// These interfaces represent dependencies that the application needs.
package out

import (
	"context"
	"time"

	"desk_server/core/domain"
)

// =============================================================================
// Message Repository (PostgreSQL)
// =============================================================================

// MessageRepository persists chat messages and their projected
// classification columns.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	GetByExternalID(ctx context.Context, channelID int64, externalID string) (*domain.Message, error)
	List(ctx context.Context, filter *domain.MessageFilter, page *domain.PageRequest) ([]*domain.Message, int64, error)

	// UpdateClassification projects a classification result onto the row.
	UpdateClassification(ctx context.Context, id int64, result *domain.ClassificationResult) error

	// LinkCase attaches the message to a case.
	LinkCase(ctx context.Context, id int64, caseID int64) error

	// HasStaffMessageSince reports whether any staff-authored message was
	// recorded on the channel after the given time. Used by case grouping.
	HasStaffMessageSince(ctx context.Context, channelID int64, since time.Time) (bool, error)
}

// =============================================================================
// Case Repository (PostgreSQL)
// =============================================================================

// CaseRepository persists support cases.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id int64) (*domain.Case, error)
	List(ctx context.Context, filter *domain.CaseFilter, page *domain.PageRequest) ([]*domain.Case, int64, error)

	// FindRecentOpen returns the newest non-terminal case on the channel
	// created after the cutoff, or nil when none exists.
	FindRecentOpen(ctx context.Context, channelID int64, createdAfter time.Time) (*domain.Case, error)

	// AppendMessage increments the message counter and bumps updated_at.
	AppendMessage(ctx context.Context, caseID int64) error

	UpdateStatus(ctx context.Context, id int64, status domain.CaseStatus) error
	UpdatePriority(ctx context.Context, id int64, priority domain.CasePriority, severity domain.CaseSeverity) error
}

// =============================================================================
// Channel Repository (PostgreSQL)
// =============================================================================

// ChannelRepository persists channels and their triage state.
type ChannelRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Channel, error)
	GetOrCreateByExternalID(ctx context.Context, externalID, title string) (*domain.Channel, error)
	List(ctx context.Context, page *domain.PageRequest) ([]*domain.Channel, int64, error)

	// SetAwaitingReply sets or clears the awaiting-reply flag (idempotent).
	SetAwaitingReply(ctx context.Context, id int64, awaiting bool) error

	// RaisePriority escalates the stored priority; implementations must
	// never downgrade an existing higher priority.
	RaisePriority(ctx context.Context, id int64, atLeast domain.CasePriority) error
}

// =============================================================================
// Pattern Repository (PostgreSQL, optional override layer)
// =============================================================================

// PatternRepository stores deployment-specific pattern overrides. Groups
// present here replace the built-in defaults of the same name at startup.
type PatternRepository interface {
	ListActive(ctx context.Context) ([]*domain.PatternRule, error)
	ListByGroup(ctx context.Context, group domain.PatternGroup) ([]*domain.PatternRule, error)
	Create(ctx context.Context, rule *domain.PatternRule) error
	Update(ctx context.Context, rule *domain.PatternRule) error
	Delete(ctx context.Context, id int64) error
}
