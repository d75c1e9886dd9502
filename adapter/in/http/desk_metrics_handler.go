package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"desk_server/pkg/metrics"
	"desk_server/pkg/response"
)

// MetricsHandler exposes in-process latency and pool statistics.
type MetricsHandler struct {
	db *sqlx.DB
}

func NewMetricsHandler(db *sqlx.DB) *MetricsHandler {
	return &MetricsHandler{db: db}
}

func (h *MetricsHandler) Register(router fiber.Router) {
	router.Get("/metrics", h.GetMetrics)
}

func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	latencies := make(map[string]map[string]any)
	for endpoint, stats := range metrics.GetAllLatencyStats() {
		latencies[endpoint] = stats.ToMap()
	}

	payload := fiber.Map{
		"latency": latencies,
	}
	if h.db != nil {
		pool := metrics.GetDBPoolStats(h.db.DB)
		payload["db_pool"] = pool.ToMap()
		payload["db_pool_health"] = metrics.AssessDBPoolHealth(pool)
	}

	return response.OK(c, payload)
}
