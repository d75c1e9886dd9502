package http

import (
	"github.com/gofiber/fiber/v2"

	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/core/service/classification"
	"desk_server/pkg/response"
)

// PatternHandler manages the deployment-specific pattern override layer.
// Overrides are loaded into the catalog at startup; edits here take effect
// on the next restart.
type PatternHandler struct {
	patterns out.PatternRepository
}

func NewPatternHandler(patterns out.PatternRepository) *PatternHandler {
	return &PatternHandler{patterns: patterns}
}

func (h *PatternHandler) Register(router fiber.Router) {
	patterns := router.Group("/patterns")
	patterns.Get("/", h.List)
	patterns.Post("/", h.Create)
	patterns.Put("/:id", h.Update)
	patterns.Delete("/:id", h.Delete)
}

func (h *PatternHandler) List(c *fiber.Ctx) error {
	if group := c.Query("group"); group != "" {
		rules, err := h.patterns.ListByGroup(c.Context(), domain.PatternGroup(group))
		if err != nil {
			return repoError(err)
		}
		return response.OK(c, rules)
	}

	rules, err := h.patterns.ListActive(c.Context())
	if err != nil {
		return repoError(err)
	}
	return response.OK(c, rules)
}

func (h *PatternHandler) Create(c *fiber.Ctx) error {
	var rule domain.PatternRule
	if err := c.BodyParser(&rule); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validateRule(&rule); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.patterns.Create(c.Context(), &rule); err != nil {
		return repoError(err)
	}
	return response.Created(c, rule)
}

func (h *PatternHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid pattern id")
	}

	var rule domain.PatternRule
	if err := c.BodyParser(&rule); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	rule.ID = id
	if err := validateRule(&rule); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.patterns.Update(c.Context(), &rule); err != nil {
		return repoError(err)
	}
	return response.OK(c, rule)
}

func (h *PatternHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid pattern id")
	}

	if err := h.patterns.Delete(c.Context(), id); err != nil {
		return repoError(err)
	}
	return response.NoContent(c)
}

// validateRule rejects rules the catalog could not compile. A broken regex
// stored here would otherwise keep the whole service from booting.
func validateRule(rule *domain.PatternRule) error {
	probe := *rule
	probe.IsActive = true
	_, err := classification.NewCatalog([]*domain.PatternRule{&probe})
	return err
}
