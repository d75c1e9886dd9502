package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/pkg/response"
)

// MessageHandler serves the message listing and inspection API.
type MessageHandler struct {
	messages out.MessageRepository
}

func NewMessageHandler(messages out.MessageRepository) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Register(router fiber.Router) {
	messages := router.Group("/messages")
	messages.Get("/", h.List)
	messages.Get("/:id", h.Get)
}

func (h *MessageHandler) List(c *fiber.Ctx) error {
	filter := &domain.MessageFilter{
		ChannelID:    QueryInt64(c, "channel_id"),
		OnlyProblems: c.QueryBool("only_problems", false),
	}
	if s := QueryString(c, "role"); s != nil {
		role := domain.SenderRole(*s)
		filter.Role = &role
	}
	if s := QueryString(c, "category"); s != nil {
		category := domain.Category(*s)
		filter.Category = &category
	}
	if s := QueryString(c, "from"); s != nil {
		if t, err := time.Parse(time.RFC3339, *s); err == nil {
			filter.Range.From = &t
		}
	}
	if s := QueryString(c, "to"); s != nil {
		if t, err := time.Parse(time.RFC3339, *s); err == nil {
			filter.Range.To = &t
		}
	}

	page := pageFromQuery(c)
	messages, total, err := h.messages.List(c.Context(), filter, page)
	if err != nil {
		return repoError(err)
	}

	return response.OKWithMeta(c, messages, &response.Meta{
		Total:    int(total),
		Page:     page.Page,
		PageSize: page.Limit(),
		HasMore:  int64(page.Offset()+page.Limit()) < total,
	})
}

func (h *MessageHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid message id")
	}

	found, err := h.messages.GetByID(c.Context(), id)
	if err != nil {
		return repoError(err)
	}
	return response.OK(c, found)
}
