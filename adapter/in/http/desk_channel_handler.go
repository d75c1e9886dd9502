package http

import (
	"github.com/gofiber/fiber/v2"

	"desk_server/core/port/out"
	"desk_server/pkg/response"
)

// ChannelHandler serves the channel listing API.
type ChannelHandler struct {
	channels out.ChannelRepository
}

func NewChannelHandler(channels out.ChannelRepository) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

func (h *ChannelHandler) Register(router fiber.Router) {
	channels := router.Group("/channels")
	channels.Get("/", h.List)
	channels.Get("/:id", h.Get)
	channels.Post("/:id/awaiting-reply", h.SetAwaitingReply)
}

func (h *ChannelHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	channels, total, err := h.channels.List(c.Context(), page)
	if err != nil {
		return repoError(err)
	}

	return response.OKWithMeta(c, channels, &response.Meta{
		Total:    int(total),
		Page:     page.Page,
		PageSize: page.Limit(),
		HasMore:  int64(page.Offset()+page.Limit()) < total,
	})
}

func (h *ChannelHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid channel id")
	}

	found, err := h.channels.GetByID(c.Context(), id)
	if err != nil {
		return repoError(err)
	}
	return response.OK(c, found)
}

type awaitingReplyRequest struct {
	Awaiting bool `json:"awaiting"`
}

// SetAwaitingReply lets agents manually flip the flag, e.g. after replying
// outside the tracked channel.
func (h *ChannelHandler) SetAwaitingReply(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid channel id")
	}

	var req awaitingReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.channels.SetAwaitingReply(c.Context(), id, req.Awaiting); err != nil {
		return repoError(err)
	}
	return response.OK(c, fiber.Map{"id": id, "awaiting_reply": req.Awaiting})
}
