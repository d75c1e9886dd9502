// Package telegram delivers outbound messages through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"desk_server/pkg/httputil"
	"desk_server/pkg/ratelimit"
	"desk_server/pkg/resilience"
)

const apiBase = "https://api.telegram.org"

// Bot API caps sendMessage at roughly 30 messages per second overall.
const sendRatePerSecond = 25

// Sender implements out.ReplySender against the Bot API sendMessage method.
type Sender struct {
	token   string
	client  *http.Client
	limiter *ratelimit.SlidingWindowLimiter
	breaker *resilience.CircuitBreaker
}

// NewSender creates a sender. An empty token disables outbound delivery;
// the triage evaluator treats a nil sender as "auto-replies off".
// The Redis client backs outbound throttling and may be nil, in which
// case sends are not throttled.
func NewSender(token string, redisClient *redis.Client) *Sender {
	if token == "" {
		return nil
	}
	var limiter *ratelimit.SlidingWindowLimiter
	if redisClient != nil {
		limiter = ratelimit.NewSlidingWindowLimiter(redisClient, sendRatePerSecond, 5)
	}
	return &Sender{
		token:   token,
		client:  httputil.NewOptimizedClient(httputil.DefaultClientConfig()),
		limiter: limiter,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("telegram")),
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendReply posts text into the chat identified by the channel's platform id.
func (s *Sender) SendReply(ctx context.Context, channelExternalID, text string) error {
	if s.limiter != nil {
		allowed, wait := s.limiter.Allow(ctx, "telegram:send")
		if !allowed {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return s.breaker.Execute(func() error {
		return s.sendMessage(ctx, channelExternalID, text)
	})
}

func (s *Sender) sendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return err
	}

	var result apiResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: sendMessage failed: %s", result.Description)
	}
	return nil
}
