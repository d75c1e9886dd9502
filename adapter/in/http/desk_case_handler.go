package http

import (
	"github.com/gofiber/fiber/v2"

	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/pkg/response"
)

// CaseHandler serves the case-management API.
type CaseHandler struct {
	cases out.CaseRepository
}

func NewCaseHandler(cases out.CaseRepository) *CaseHandler {
	return &CaseHandler{cases: cases}
}

func (h *CaseHandler) Register(router fiber.Router) {
	cases := router.Group("/cases")
	cases.Get("/", h.List)
	cases.Get("/:id", h.Get)
	cases.Patch("/:id/status", h.UpdateStatus)
	cases.Patch("/:id/priority", h.UpdatePriority)
}

func (h *CaseHandler) List(c *fiber.Ctx) error {
	filter := &domain.CaseFilter{
		ChannelID: QueryInt64(c, "channel_id"),
	}
	if s := QueryString(c, "status"); s != nil {
		status := domain.CaseStatus(*s)
		filter.Status = &status
	}
	if s := QueryString(c, "priority"); s != nil {
		priority := domain.CasePriority(*s)
		filter.Priority = &priority
	}
	if s := QueryString(c, "category"); s != nil {
		category := domain.Category(*s)
		filter.Category = &category
	}

	page := pageFromQuery(c)
	cases, total, err := h.cases.List(c.Context(), filter, page)
	if err != nil {
		return repoError(err)
	}

	return response.OKWithMeta(c, cases, &response.Meta{
		Total:    int(total),
		Page:     page.Page,
		PageSize: page.Limit(),
		HasMore:  int64(page.Offset()+page.Limit()) < total,
	})
}

func (h *CaseHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid case id")
	}

	found, err := h.cases.GetByID(c.Context(), id)
	if err != nil {
		return repoError(err)
	}
	return response.OK(c, found)
}

type updateStatusRequest struct {
	Status domain.CaseStatus `json:"status"`
}

func (h *CaseHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid case id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	current, err := h.cases.GetByID(c.Context(), id)
	if err != nil {
		return repoError(err)
	}

	if !current.Status.CanTransitionTo(req.Status) {
		return response.BadRequest(c, "invalid status transition from "+string(current.Status)+" to "+string(req.Status))
	}

	if err := h.cases.UpdateStatus(c.Context(), id, req.Status); err != nil {
		return repoError(err)
	}
	return response.OK(c, fiber.Map{"id": id, "status": req.Status})
}

type updatePriorityRequest struct {
	Priority domain.CasePriority `json:"priority"`
}

func (h *CaseHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid case id")
	}

	var req updatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	switch req.Priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
	default:
		return response.BadRequest(c, "invalid priority")
	}

	severity := domain.SeverityNormal
	switch req.Priority {
	case domain.PriorityUrgent:
		severity = domain.SeverityCritical
	case domain.PriorityHigh:
		severity = domain.SeverityHigh
	}

	if err := h.cases.UpdatePriority(c.Context(), id, req.Priority, severity); err != nil {
		return repoError(err)
	}
	return response.OK(c, fiber.Map{"id": id, "priority": req.Priority})
}
