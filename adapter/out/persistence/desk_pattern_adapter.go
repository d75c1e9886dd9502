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
// Pattern Adapter (PostgreSQL)
// =============================================================================

// PatternAdapter implements out.PatternRepository using PostgreSQL.
// Rows stored here override same-named built-in pattern groups at startup.
type PatternAdapter struct {
	db *sqlx.DB
}

// NewPatternAdapter creates a new PatternAdapter.
func NewPatternAdapter(db *sqlx.DB) *PatternAdapter {
	return &PatternAdapter{db: db}
}

const patternSelectColumns = `
	p.id, p.group_name, p.kind, p.pattern, p.language,
	p.intent, p.auto_reply, p.urgency_score, p.is_active, p.created_at, p.updated_at`

// patternRow represents the database row for pattern rules.
type patternRow struct {
	ID           int64          `db:"id"`
	GroupName    string         `db:"group_name"`
	Kind         string         `db:"kind"`
	Pattern      string         `db:"pattern"`
	Language     sql.NullString `db:"language"`
	Intent       sql.NullString `db:"intent"`
	AutoReply    bool           `db:"auto_reply"`
	UrgencyScore int            `db:"urgency_score"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *patternRow) toEntity() *domain.PatternRule {
	rule := &domain.PatternRule{
		ID:           r.ID,
		Group:        domain.PatternGroup(r.GroupName),
		Kind:         domain.PatternKind(r.Kind),
		Pattern:      r.Pattern,
		AutoReply:    r.AutoReply,
		UrgencyScore: r.UrgencyScore,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Language.Valid {
		rule.Language = domain.Language(r.Language.String)
	}
	if r.Intent.Valid {
		rule.Intent = domain.Intent(r.Intent.String)
	}
	return rule
}

// =============================================================================
// Operations
// =============================================================================

// ListActive returns every active override rule.
func (a *PatternAdapter) ListActive(ctx context.Context) ([]*domain.PatternRule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM pattern_rules p
		WHERE p.is_active = true
		ORDER BY p.group_name, p.id`, patternSelectColumns)

	return a.queryRules(ctx, query)
}

// ListByGroup returns all rules in one group, inactive included.
func (a *PatternAdapter) ListByGroup(ctx context.Context, group domain.PatternGroup) ([]*domain.PatternRule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM pattern_rules p
		WHERE p.group_name = $1
		ORDER BY p.id`, patternSelectColumns)

	return a.queryRules(ctx, query, string(group))
}

func (a *PatternAdapter) queryRules(ctx context.Context, query string, args ...any) ([]*domain.PatternRule, error) {
	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.PatternRule
	for rows.Next() {
		var row patternRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		rules = append(rules, row.toEntity())
	}
	return rules, rows.Err()
}

// Create inserts a new override rule.
func (a *PatternAdapter) Create(ctx context.Context, rule *domain.PatternRule) error {
	query := `
		INSERT INTO pattern_rules (
			group_name, kind, pattern, language, intent, auto_reply, urgency_score, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := a.db.QueryRowxContext(ctx, query,
		string(rule.Group), string(rule.Kind), rule.Pattern,
		nullStr(string(rule.Language)), nullStr(string(rule.Intent)),
		rule.AutoReply, rule.UrgencyScore, rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Update rewrites an existing override rule.
func (a *PatternAdapter) Update(ctx context.Context, rule *domain.PatternRule) error {
	query := `
		UPDATE pattern_rules SET
			group_name = $1, kind = $2, pattern = $3, language = $4,
			intent = $5, auto_reply = $6, urgency_score = $7, is_active = $8,
			updated_at = NOW()
		WHERE id = $9`

	res, err := a.db.ExecContext(ctx, query,
		string(rule.Group), string(rule.Kind), rule.Pattern,
		nullStr(string(rule.Language)), nullStr(string(rule.Intent)),
		rule.AutoReply, rule.UrgencyScore, rule.IsActive, rule.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an override rule.
func (a *PatternAdapter) Delete(ctx context.Context, id int64) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM pattern_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
