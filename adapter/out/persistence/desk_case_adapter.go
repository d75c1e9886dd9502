package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"desk_server/core/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// =============================================================================
// Case Adapter (PostgreSQL)
// =============================================================================

// CaseAdapter implements out.CaseRepository using PostgreSQL.
type CaseAdapter struct {
	db *sqlx.DB
}

// NewCaseAdapter creates a new CaseAdapter.
func NewCaseAdapter(db *sqlx.DB) *CaseAdapter {
	return &CaseAdapter{db: db}
}

const caseSelectColumns = `
	c.id, c.channel_id, c.title, c.status, c.priority, c.severity, c.category,
	c.tags, c.first_message_id, c.message_count, c.created_at, c.updated_at, c.resolved_at`

// caseRow represents the database row for cases.
type caseRow struct {
	ID             int64          `db:"id"`
	ChannelID      int64          `db:"channel_id"`
	Title          string         `db:"title"`
	Status         string         `db:"status"`
	Priority       string         `db:"priority"`
	Severity       string         `db:"severity"`
	Category       string         `db:"category"`
	Tags           pq.StringArray `db:"tags"`
	FirstMessageID int64          `db:"first_message_id"`
	MessageCount   int            `db:"message_count"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	ResolvedAt     sql.NullTime   `db:"resolved_at"`
}

type caseRowWithCount struct {
	caseRow
	TotalCount int64 `db:"total_count"`
}

func (r *caseRow) toEntity() *domain.Case {
	c := &domain.Case{
		ID:             r.ID,
		ChannelID:      r.ChannelID,
		Title:          r.Title,
		Status:         domain.CaseStatus(r.Status),
		Priority:       domain.CasePriority(r.Priority),
		Severity:       domain.CaseSeverity(r.Severity),
		Category:       domain.Category(r.Category),
		Tags:           r.Tags,
		FirstMessageID: r.FirstMessageID,
		MessageCount:   r.MessageCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ResolvedAt.Valid {
		c.ResolvedAt = &r.ResolvedAt.Time
	}
	return c
}

// =============================================================================
// CRUD Operations
// =============================================================================

// Create inserts a new case.
func (a *CaseAdapter) Create(ctx context.Context, c *domain.Case) error {
	query := `
		INSERT INTO cases (
			channel_id, title, status, priority, severity, category,
			tags, first_message_id, message_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return a.db.QueryRowxContext(ctx, query,
		c.ChannelID, c.Title, string(c.Status), string(c.Priority), string(c.Severity),
		string(c.Category), pq.Array(c.Tags), c.FirstMessageID, c.MessageCount,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a single case.
func (a *CaseAdapter) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases c WHERE c.id = $1`, caseSelectColumns)

	var row caseRow
	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// List returns cases matching the filter, newest first.
func (a *CaseAdapter) List(ctx context.Context, filter *domain.CaseFilter, page *domain.PageRequest) ([]*domain.Case, int64, error) {
	if filter == nil {
		filter = &domain.CaseFilter{}
	}
	if page == nil {
		page = &domain.PageRequest{}
	}

	where := "1=1"
	args := []any{}
	argIdx := 1

	if filter.ChannelID != nil {
		where += fmt.Sprintf(" AND c.channel_id = $%d", argIdx)
		args = append(args, *filter.ChannelID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND c.status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if filter.Priority != nil {
		where += fmt.Sprintf(" AND c.priority = $%d", argIdx)
		args = append(args, string(*filter.Priority))
		argIdx++
	}
	if filter.Category != nil {
		where += fmt.Sprintf(" AND c.category = $%d", argIdx)
		args = append(args, string(*filter.Category))
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM cases c
		WHERE %s
		ORDER BY c.created_at DESC
		LIMIT $%d OFFSET $%d`,
		caseSelectColumns, where, argIdx, argIdx+1)
	args = append(args, page.Limit(), page.Offset())

	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cases []*domain.Case
	var total int64
	for rows.Next() {
		var row caseRowWithCount
		if err := rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		total = row.TotalCount
		cases = append(cases, row.toEntity())
	}
	return cases, total, rows.Err()
}

// FindRecentOpen returns the newest non-terminal case on the channel created
// after the cutoff, or nil when none exists.
func (a *CaseAdapter) FindRecentOpen(ctx context.Context, channelID int64, createdAfter time.Time) (*domain.Case, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cases c
		WHERE c.channel_id = $1
		  AND c.created_at > $2
		  AND c.status NOT IN ('resolved', 'closed')
		ORDER BY c.created_at DESC
		LIMIT 1`, caseSelectColumns)

	var row caseRow
	if err := a.db.GetContext(ctx, &row, query, channelID, createdAfter); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// AppendMessage increments the message counter and bumps updated_at.
func (a *CaseAdapter) AppendMessage(ctx context.Context, caseID int64) error {
	res, err := a.db.ExecContext(ctx, `
		UPDATE cases SET message_count = message_count + 1, updated_at = NOW()
		WHERE id = $1`, caseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus changes the case status, stamping resolved_at on resolution.
func (a *CaseAdapter) UpdateStatus(ctx context.Context, id int64, status domain.CaseStatus) error {
	query := `
		UPDATE cases SET
			status = $1,
			resolved_at = CASE WHEN $1 IN ('resolved', 'closed') THEN NOW() ELSE NULL END,
			updated_at = NOW()
		WHERE id = $2`

	res, err := a.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePriority changes the case priority and severity.
func (a *CaseAdapter) UpdatePriority(ctx context.Context, id int64, priority domain.CasePriority, severity domain.CaseSeverity) error {
	res, err := a.db.ExecContext(ctx, `
		UPDATE cases SET priority = $1, severity = $2, updated_at = NOW()
		WHERE id = $3`, string(priority), string(severity), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
