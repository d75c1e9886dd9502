// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"desk_server/core/domain"

	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Message Adapter (PostgreSQL)
// =============================================================================

// MessageAdapter implements out.MessageRepository using PostgreSQL.
type MessageAdapter struct {
	db *sqlx.DB
}

// NewMessageAdapter creates a new MessageAdapter.
func NewMessageAdapter(db *sqlx.DB) *MessageAdapter {
	return &MessageAdapter{db: db}
}

// messageSelectColumns contains explicit column names for SELECT queries.
const messageSelectColumns = `
	m.id, m.channel_id, m.external_id, m.sender_id, m.sender_name, m.role, m.text,
	m.category, m.sentiment, m.intent, m.urgency, m.is_problem,
	m.summary, m.entities, m.auto_reply_candidate, m.case_id, m.created_at`

// messageRow represents the database row for messages.
type messageRow struct {
	ID         int64          `db:"id"`
	ChannelID  int64          `db:"channel_id"`
	ExternalID string         `db:"external_id"`
	SenderID   int64          `db:"sender_id"`
	SenderName sql.NullString `db:"sender_name"`
	Role       string         `db:"role"`
	Text       string         `db:"text"`

	// Classification projections
	Category           sql.NullString `db:"category"`
	Sentiment          sql.NullString `db:"sentiment"`
	Intent             sql.NullString `db:"intent"`
	Urgency            sql.NullInt64  `db:"urgency"`
	IsProblem          bool           `db:"is_problem"`
	Summary            sql.NullString `db:"summary"`
	Entities           []byte         `db:"entities"` // jsonb
	AutoReplyCandidate bool           `db:"auto_reply_candidate"`

	CaseID    sql.NullInt64 `db:"case_id"`
	CreatedAt time.Time     `db:"created_at"`
}

// messageRowWithCount extends messageRow with total count for list queries.
type messageRowWithCount struct {
	messageRow
	TotalCount int64 `db:"total_count"`
}

func (r *messageRow) toEntity() *domain.Message {
	msg := &domain.Message{
		ID:                 r.ID,
		ChannelID:          r.ChannelID,
		ExternalID:         r.ExternalID,
		SenderID:           r.SenderID,
		Role:               domain.SenderRole(r.Role),
		Text:               r.Text,
		IsProblem:          r.IsProblem,
		AutoReplyCandidate: r.AutoReplyCandidate,
		CreatedAt:          r.CreatedAt,
	}

	if r.SenderName.Valid {
		msg.SenderName = r.SenderName.String
	}
	if r.Category.Valid {
		c := domain.Category(r.Category.String)
		msg.Category = &c
	}
	if r.Sentiment.Valid {
		s := domain.Sentiment(r.Sentiment.String)
		msg.Sentiment = &s
	}
	if r.Intent.Valid {
		i := domain.Intent(r.Intent.String)
		msg.Intent = &i
	}
	if r.Urgency.Valid {
		u := int(r.Urgency.Int64)
		msg.Urgency = &u
	}
	if r.Summary.Valid {
		msg.Summary = &r.Summary.String
	}
	if len(r.Entities) > 0 {
		_ = json.Unmarshal(r.Entities, &msg.Entities)
	}
	if r.CaseID.Valid {
		msg.CaseID = &r.CaseID.Int64
	}

	return msg
}

// =============================================================================
// CRUD Operations
// =============================================================================

// Create inserts a new message. Re-delivery of the same platform message is
// treated as success and returns the existing row id.
func (a *MessageAdapter) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (
			channel_id, external_id, sender_id, sender_name, role, text, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (channel_id, external_id) DO UPDATE SET
			text = EXCLUDED.text
		RETURNING id, created_at`

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return a.db.QueryRowxContext(ctx, query,
		msg.ChannelID, msg.ExternalID, msg.SenderID, nullStr(msg.SenderName),
		string(msg.Role), msg.Text, createdAt,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// GetByID retrieves a single message.
func (a *MessageAdapter) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := fmt.Sprintf(`SELECT %s FROM messages m WHERE m.id = $1`, messageSelectColumns)

	var row messageRow
	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// GetByExternalID retrieves a message by its platform identifier.
func (a *MessageAdapter) GetByExternalID(ctx context.Context, channelID int64, externalID string) (*domain.Message, error) {
	query := fmt.Sprintf(`SELECT %s FROM messages m WHERE m.channel_id = $1 AND m.external_id = $2`, messageSelectColumns)

	var row messageRow
	if err := a.db.GetContext(ctx, &row, query, channelID, externalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// List returns messages matching the filter, newest first.
func (a *MessageAdapter) List(ctx context.Context, filter *domain.MessageFilter, page *domain.PageRequest) ([]*domain.Message, int64, error) {
	if filter == nil {
		filter = &domain.MessageFilter{}
	}
	if page == nil {
		page = &domain.PageRequest{}
	}

	where := "1=1"
	args := []any{}
	argIdx := 1

	if filter.ChannelID != nil {
		where += fmt.Sprintf(" AND m.channel_id = $%d", argIdx)
		args = append(args, *filter.ChannelID)
		argIdx++
	}
	if filter.Role != nil {
		where += fmt.Sprintf(" AND m.role = $%d", argIdx)
		args = append(args, string(*filter.Role))
		argIdx++
	}
	if filter.Category != nil {
		where += fmt.Sprintf(" AND m.category = $%d", argIdx)
		args = append(args, string(*filter.Category))
		argIdx++
	}
	if filter.OnlyProblems {
		where += " AND m.is_problem = true"
	}
	if filter.Range.From != nil {
		where += fmt.Sprintf(" AND m.created_at >= $%d", argIdx)
		args = append(args, *filter.Range.From)
		argIdx++
	}
	if filter.Range.To != nil {
		where += fmt.Sprintf(" AND m.created_at <= $%d", argIdx)
		args = append(args, *filter.Range.To)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM messages m
		WHERE %s
		ORDER BY m.created_at DESC
		LIMIT $%d OFFSET $%d`,
		messageSelectColumns, where, argIdx, argIdx+1)
	args = append(args, page.Limit(), page.Offset())

	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*domain.Message
	var total int64
	for rows.Next() {
		var row messageRowWithCount
		if err := rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		total = row.TotalCount
		messages = append(messages, row.toEntity())
	}
	return messages, total, rows.Err()
}

// UpdateClassification projects a classification result onto the row.
func (a *MessageAdapter) UpdateClassification(ctx context.Context, id int64, result *domain.ClassificationResult) error {
	entities, err := json.Marshal(result.Entities)
	if err != nil {
		return err
	}

	query := `
		UPDATE messages SET
			category = $1, sentiment = $2, intent = $3, urgency = $4,
			is_problem = $5, summary = $6, entities = $7, auto_reply_candidate = $8
		WHERE id = $9`

	res, err := a.db.ExecContext(ctx, query,
		string(result.Category), string(result.Sentiment), string(result.Intent),
		result.Urgency, result.IsProblem, nullStr(result.Summary), entities,
		result.AutoReplyAllowed, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkCase attaches the message to a case.
func (a *MessageAdapter) LinkCase(ctx context.Context, id int64, caseID int64) error {
	res, err := a.db.ExecContext(ctx, `UPDATE messages SET case_id = $1 WHERE id = $2`, caseID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasStaffMessageSince reports whether staff wrote on the channel after t.
func (a *MessageAdapter) HasStaffMessageSince(ctx context.Context, channelID int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM messages
			WHERE channel_id = $1 AND created_at > $2 AND role IN ('support', 'team', 'agent')
		)`

	var exists bool
	if err := a.db.GetContext(ctx, &exists, query, channelID, since); err != nil {
		return false, err
	}
	return exists, nil
}

// nullStr converts an empty string to NULL.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
