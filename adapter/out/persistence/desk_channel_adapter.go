package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"desk_server/core/domain"

	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Channel Adapter (PostgreSQL)
// =============================================================================

// ChannelAdapter implements out.ChannelRepository using PostgreSQL.
type ChannelAdapter struct {
	db *sqlx.DB
}

// NewChannelAdapter creates a new ChannelAdapter.
func NewChannelAdapter(db *sqlx.DB) *ChannelAdapter {
	return &ChannelAdapter{db: db}
}

const channelSelectColumns = `
	ch.id, ch.external_id, ch.title, ch.priority, ch.awaiting_reply,
	ch.last_message_at, ch.created_at, ch.updated_at`

// channelRow represents the database row for channels.
type channelRow struct {
	ID            int64        `db:"id"`
	ExternalID    string       `db:"external_id"`
	Title         string       `db:"title"`
	Priority      string       `db:"priority"`
	AwaitingReply bool         `db:"awaiting_reply"`
	LastMessageAt sql.NullTime `db:"last_message_at"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

type channelRowWithCount struct {
	channelRow
	TotalCount int64 `db:"total_count"`
}

func (r *channelRow) toEntity() *domain.Channel {
	ch := &domain.Channel{
		ID:            r.ID,
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		Priority:      domain.CasePriority(r.Priority),
		AwaitingReply: r.AwaitingReply,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.LastMessageAt.Valid {
		ch.LastMessageAt = &r.LastMessageAt.Time
	}
	return ch
}

// =============================================================================
// Operations
// =============================================================================

// GetByID retrieves a single channel.
func (a *ChannelAdapter) GetByID(ctx context.Context, id int64) (*domain.Channel, error) {
	query := fmt.Sprintf(`SELECT %s FROM channels ch WHERE ch.id = $1`, channelSelectColumns)

	var row channelRow
	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// GetOrCreateByExternalID finds a channel by its platform identifier,
// creating it on first contact. Upsert keeps the title current.
func (a *ChannelAdapter) GetOrCreateByExternalID(ctx context.Context, externalID, title string) (*domain.Channel, error) {
	query := fmt.Sprintf(`
		INSERT INTO channels (external_id, title, priority, awaiting_reply, last_message_at)
		VALUES ($1, $2, 'low', false, NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			title = COALESCE(NULLIF(EXCLUDED.title, ''), channels.title),
			last_message_at = NOW(),
			updated_at = NOW()
		RETURNING %s`, selfAlias(channelSelectColumns))

	var row channelRow
	if err := a.db.GetContext(ctx, &row, query, externalID, title); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// List returns all channels, most recently active first.
func (a *ChannelAdapter) List(ctx context.Context, page *domain.PageRequest) ([]*domain.Channel, int64, error) {
	if page == nil {
		page = &domain.PageRequest{}
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM channels ch
		ORDER BY ch.last_message_at DESC NULLS LAST
		LIMIT $1 OFFSET $2`, channelSelectColumns)

	rows, err := a.db.QueryxContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var channels []*domain.Channel
	var total int64
	for rows.Next() {
		var row channelRowWithCount
		if err := rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		total = row.TotalCount
		channels = append(channels, row.toEntity())
	}
	return channels, total, rows.Err()
}

// SetAwaitingReply sets or clears the awaiting-reply flag (idempotent).
func (a *ChannelAdapter) SetAwaitingReply(ctx context.Context, id int64, awaiting bool) error {
	res, err := a.db.ExecContext(ctx, `
		UPDATE channels SET awaiting_reply = $1, updated_at = NOW()
		WHERE id = $2 AND awaiting_reply IS DISTINCT FROM $1`, awaiting, id)
	if err != nil {
		return err
	}
	// Zero rows means either already in the target state or missing;
	// both are fine for an idempotent flag write.
	_ = res
	return nil
}

// RaisePriority escalates the stored priority, never downgrading. The rank
// comparison runs in SQL so concurrent escalations cannot clobber a higher
// value with a lower one.
func (a *ChannelAdapter) RaisePriority(ctx context.Context, id int64, atLeast domain.CasePriority) error {
	query := `
		UPDATE channels SET priority = $1, updated_at = NOW()
		WHERE id = $2
		  AND array_position(ARRAY['low','medium','high','urgent'], priority)
		    < array_position(ARRAY['low','medium','high','urgent'], $1)`

	_, err := a.db.ExecContext(ctx, query, string(atLeast), id)
	return err
}

// selfAlias strips the "ch." prefix for RETURNING clauses.
func selfAlias(cols string) string {
	return strings.ReplaceAll(cols, "ch.", "")
}
