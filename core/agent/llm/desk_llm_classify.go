package llm

import (
	"context"
	"errors"
	"strings"

	json "github.com/goccy/go-json"

	"desk_server/core/port/out"
)

// ErrNoJSON is returned when the completion contains no JSON object.
var ErrNoJSON = errors.New("llm: no json object in completion")

const classifySystemPrompt = `You are a support-message classifier for a business helpdesk.
Messages arrive in Russian, Uzbek (Latin or Cyrillic script), English, or a mix.
Analyze the user message and respond with a single JSON object, nothing else:
{
  "category": "technical|billing|complaint|question|feature_request|feedback|onboarding|integration|order|delivery|menu|app|general",
  "sentiment": "positive|neutral|negative|frustrated",
  "intent": "greeting|gratitude|closing|ask_question|report_problem|request_feature|complaint|faq_pricing|faq_hours|faq_contacts|response|confirmation|information",
  "urgency": 0-5,
  "is_problem": true|false,
  "needs_response": true|false,
  "auto_reply_allowed": true|false,
  "summary": "one short sentence, same language as the message",
  "entities": {"key": "value"}
}
Rules:
- "is_problem" is true when the user reports something broken, wrong, or unexpected.
- "urgency" 0 means no action needed, 5 means production outage or money at risk.
- A question about a discrepancy in amounts or charges is a billing complaint.
- Keep "summary" under 100 characters.`

// Classifier implements out.MessageClassifier on top of the chat client.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	if client == nil {
		return nil
	}
	return &Classifier{client: client}
}

// ClassifyMessage asks the model for a structured classification of text.
// The completion is parsed leniently: the first balanced JSON object is
// extracted so markdown fences or prose around it do not break decoding.
func (c *Classifier) ClassifyMessage(ctx context.Context, text string) (*out.RawClassification, error) {
	completion, err := c.client.CompleteWithSystem(ctx, classifySystemPrompt, text)
	if err != nil {
		return nil, err
	}

	payload, err := extractJSONObject(completion)
	if err != nil {
		return nil, err
	}

	var raw out.RawClassification
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// extractJSONObject returns the first balanced {...} block in s.
// Braces inside JSON strings are skipped.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
