package domain

import "time"

// SenderRole identifies who authored a message.
type SenderRole string

const (
	RoleClient  SenderRole = "client"
	RoleSupport SenderRole = "support"
	RoleTeam    SenderRole = "team"
	RoleAgent   SenderRole = "agent"
)

// IsStaff reports whether the role belongs to the support side.
func (r SenderRole) IsStaff() bool {
	return r == RoleSupport || r == RoleTeam || r == RoleAgent
}

// CasePriority is the SLA priority assigned to a case.
type CasePriority string

const (
	PriorityLow    CasePriority = "low"
	PriorityMedium CasePriority = "medium"
	PriorityHigh   CasePriority = "high"
	PriorityUrgent CasePriority = "urgent"
)

// rank orders priorities for never-downgrade comparisons.
func (p CasePriority) rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast returns the higher of p and other.
func (p CasePriority) AtLeast(other CasePriority) CasePriority {
	if other.rank() > p.rank() {
		return other
	}
	return p
}

// CaseSeverity is the coarser operational severity mirror of priority.
type CaseSeverity string

const (
	SeverityNormal   CaseSeverity = "normal"
	SeverityHigh     CaseSeverity = "high"
	SeverityCritical CaseSeverity = "critical"
)

// PriorityForUrgency maps a 0-5 urgency score onto a case priority.
func PriorityForUrgency(urgency int) CasePriority {
	switch {
	case urgency >= 5:
		return PriorityUrgent
	case urgency >= 4:
		return PriorityHigh
	case urgency >= 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// SeverityForUrgency maps a 0-5 urgency score onto a case severity.
func SeverityForUrgency(urgency int) CaseSeverity {
	switch {
	case urgency >= 5:
		return SeverityCritical
	case urgency >= 4:
		return SeverityHigh
	default:
		return SeverityNormal
	}
}

// Pagination request
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p *PageRequest) Offset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.PageSize
}

func (p *PageRequest) Limit() int {
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p.PageSize
}

// Pagination response
type PageResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func NewPageResponse(page, pageSize int, totalItems int64) *PageResponse {
	totalPages := int(totalItems) / pageSize
	if int(totalItems)%pageSize > 0 {
		totalPages++
	}
	return &PageResponse{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Date range filter
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}
