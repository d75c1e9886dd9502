package http

import (
	"strconv"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"desk_server/adapter/out/cache"
	"desk_server/adapter/out/mongodb"
	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/pkg/logger"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type WebhookMetrics struct {
	Processed  int64
	Duplicates int64
	Skipped    int64
	Errors     int64
}

// WebhookHandler ingests Telegram updates: dedupe, archive, normalize into
// the relational store, then queue for classification. The webhook always
// answers 200 so Telegram does not retry storms on our internal failures.
type WebhookHandler struct {
	secret   string
	dedupe   *cache.UpdateDedupe
	archive  *mongodb.UpdateArchive
	channels out.ChannelRepository
	messages out.MessageRepository
	producer out.MessageProducer
	staffIDs map[int64]bool
	metrics  WebhookMetrics
}

func NewWebhookHandler(
	secret string,
	dedupe *cache.UpdateDedupe,
	archive *mongodb.UpdateArchive,
	channels out.ChannelRepository,
	messages out.MessageRepository,
	producer out.MessageProducer,
	staffIDs []int64,
) *WebhookHandler {
	staff := make(map[int64]bool, len(staffIDs))
	for _, id := range staffIDs {
		staff[id] = true
	}
	return &WebhookHandler{
		secret:   secret,
		dedupe:   dedupe,
		archive:  archive,
		channels: channels,
		messages: messages,
		producer: producer,
		staffIDs: staff,
	}
}

func (h *WebhookHandler) Register(app *fiber.App) {
	app.Post("/webhook/telegram", h.TelegramWebhook)
	app.Post("/api/v1/webhook/telegram", h.TelegramWebhook)
}

func (h *WebhookHandler) GetMetrics() WebhookMetrics {
	return WebhookMetrics{
		Processed:  atomic.LoadInt64(&h.metrics.Processed),
		Duplicates: atomic.LoadInt64(&h.metrics.Duplicates),
		Skipped:    atomic.LoadInt64(&h.metrics.Skipped),
		Errors:     atomic.LoadInt64(&h.metrics.Errors),
	}
}

// telegramUpdate mirrors the subset of the Bot API update we consume.
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		From      *struct {
			ID        int64  `json:"id"`
			IsBot     bool   `json:"is_bot"`
			FirstName string `json:"first_name"`
			Username  string `json:"username"`
		} `json:"from"`
		Chat struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"chat"`
		Date int64  `json:"date"`
		Text string `json:"text"`
	} `json:"message"`
}

func (h *WebhookHandler) TelegramWebhook(c *fiber.Ctx) error {
	if h.secret != "" && c.Get(secretTokenHeader) != h.secret {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid secret token")
	}

	body := c.Body()
	var update telegramUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		logger.WithError(err).Warn("webhook: malformed update payload")
		return c.SendStatus(fiber.StatusOK)
	}

	// Edited messages, joins, reactions and other non-message updates.
	if update.Message == nil || update.Message.From == nil {
		atomic.AddInt64(&h.metrics.Skipped, 1)
		return c.SendStatus(fiber.StatusOK)
	}

	if h.dedupe != nil && h.dedupe.Seen(c.Context(), update.UpdateID) {
		atomic.AddInt64(&h.metrics.Duplicates, 1)
		return c.SendStatus(fiber.StatusOK)
	}

	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	if h.archive != nil {
		if err := h.archive.Archive(c.Context(), update.UpdateID, chatID, body); err != nil {
			logger.WithError(err).Debug("webhook: archive write failed")
		}
	}

	text := update.Message.Text
	if len([]rune(text)) < domain.MinMessageLength || update.Message.From.IsBot {
		atomic.AddInt64(&h.metrics.Skipped, 1)
		return c.SendStatus(fiber.StatusOK)
	}

	channel, err := h.channels.GetOrCreateByExternalID(c.Context(), chatID, update.Message.Chat.Title)
	if err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		logger.WithError(err).WithField("chat_id", chatID).Error("webhook: channel upsert failed")
		return c.SendStatus(fiber.StatusOK)
	}

	role := domain.RoleClient
	if h.staffIDs[update.Message.From.ID] {
		role = domain.RoleSupport
	}

	senderName := update.Message.From.FirstName
	if senderName == "" {
		senderName = update.Message.From.Username
	}

	msg := &domain.Message{
		ChannelID:  channel.ID,
		ExternalID: strconv.FormatInt(update.Message.MessageID, 10),
		SenderID:   update.Message.From.ID,
		SenderName: senderName,
		Role:       role,
		Text:       text,
	}
	if err := h.messages.Create(c.Context(), msg); err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		logger.WithError(err).WithField("chat_id", chatID).Error("webhook: message insert failed")
		return c.SendStatus(fiber.StatusOK)
	}

	if h.producer == nil {
		// No job stream configured; the message is stored but stays
		// unclassified until a worker with Redis picks it up.
		atomic.AddInt64(&h.metrics.Processed, 1)
		return c.SendStatus(fiber.StatusOK)
	}

	job := &out.ClassifyJob{
		MessageID:  msg.ID,
		ChannelID:  channel.ID,
		Text:       text,
		Role:       role,
		SenderName: senderName,
		ReceivedAt: msg.CreatedAt,
	}
	if err := h.producer.PublishClassify(c.Context(), job); err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		logger.WithError(err).WithField("message_id", msg.ID).Error("webhook: enqueue failed")
		return c.SendStatus(fiber.StatusOK)
	}

	atomic.AddInt64(&h.metrics.Processed, 1)
	return c.SendStatus(fiber.StatusOK)
}
