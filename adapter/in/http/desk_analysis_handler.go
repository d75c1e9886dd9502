package http

import (
	"github.com/gofiber/fiber/v2"

	"desk_server/core/service/classification"
	"desk_server/pkg/response"
)

// AnalysisHandler exposes the classification pipeline for ad-hoc use:
// agents paste a message and see exactly what the pipeline would decide.
type AnalysisHandler struct {
	pipeline *classification.Pipeline
}

func NewAnalysisHandler(pipeline *classification.Pipeline) *AnalysisHandler {
	return &AnalysisHandler{pipeline: pipeline}
}

func (h *AnalysisHandler) Register(router fiber.Router) {
	analyze := router.Group("/analyze")
	analyze.Post("/", h.Analyze)
}

type analyzeRequest struct {
	Text string `json:"text"`
	// HeuristicsOnly skips the model even when one is configured.
	HeuristicsOnly bool `json:"heuristics_only"`
}

func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Text == "" {
		return response.BadRequest(c, "text is required")
	}

	if req.HeuristicsOnly {
		return response.OK(c, h.pipeline.AnalyzeWithoutAI(req.Text))
	}
	return response.OK(c, h.pipeline.Classify(c.Context(), req.Text))
}
