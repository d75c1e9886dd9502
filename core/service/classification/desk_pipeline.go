package classification

import (
	"context"
	"time"

	"desk_server/core/domain"
	"desk_server/core/port/out"
	"desk_server/pkg/logger"
)

// =============================================================================
// Classification Orchestrator
// =============================================================================

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	// LLMTimeout bounds the external model call. Expiry is not an error,
	// it is the signal to fall back to the heuristics engine.
	LLMTimeout time.Duration
}

// DefaultPipelineConfig returns the default configuration.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		LLMTimeout: 8 * time.Second,
	}
}

// Pipeline sequences the simple-intent fast path, the external model (when
// configured) and the heuristics engine. It never returns an error: every
// failure mode degrades to the deterministic heuristics result.
type Pipeline struct {
	analyzer *Analyzer
	llm      out.MessageClassifier // nil when no credentials configured
	config   *PipelineConfig
}

// NewPipeline creates the orchestrator. llm may be nil.
func NewPipeline(analyzer *Analyzer, llm out.MessageClassifier, config *PipelineConfig) *Pipeline {
	if config == nil {
		config = DefaultPipelineConfig()
	}
	return &Pipeline{analyzer: analyzer, llm: llm, config: config}
}

// Classify produces a classification result for the message text.
//
// Fixed-form utterances short-circuit: the heuristics engine still runs in
// full (same semantics, pre-seeded intent), only the model call is skipped.
func (p *Pipeline) Classify(ctx context.Context, text string) *domain.ClassificationResult {
	if si, ok := p.analyzer.catalog.DetectSimpleIntent(text); ok {
		return p.analyzer.analyze(text, &si)
	}

	if p.llm != nil {
		llmCtx, cancel := context.WithTimeout(ctx, p.config.LLMTimeout)
		raw, err := p.llm.ClassifyMessage(llmCtx, text)
		cancel()
		if err == nil && raw != nil {
			return p.sanitize(raw, text)
		}
		logger.WithError(err).Debug("model classification failed, using heuristics")
	}

	return p.analyzer.analyze(text, nil)
}

// AnalyzeWithoutAI exposes the bare heuristics engine for the analysis API
// and for validating model output against the reference implementation.
func (p *Pipeline) AnalyzeWithoutAI(text string) *domain.ClassificationResult {
	return p.analyzer.AnalyzeWithoutAI(text)
}

// =============================================================================
// Model output validation
// =============================================================================
//
// The model is untrusted input. Fields are validated individually: an
// out-of-range urgency or unknown enum value degrades that one field to its
// safe default instead of rejecting the whole result.

var validCategories = map[domain.Category]bool{
	domain.CategoryTechnical: true, domain.CategoryIntegration: true,
	domain.CategoryBilling: true, domain.CategoryComplaint: true,
	domain.CategoryFeatureRequest: true, domain.CategoryOrder: true,
	domain.CategoryDelivery: true, domain.CategoryMenu: true,
	domain.CategoryApp: true, domain.CategoryOnboarding: true,
	domain.CategoryQuestion: true, domain.CategoryFeedback: true,
	domain.CategoryGeneral: true,
}

var validSentiments = map[domain.Sentiment]bool{
	domain.SentimentPositive: true, domain.SentimentNeutral: true,
	domain.SentimentNegative: true, domain.SentimentFrustrated: true,
}

var validIntents = map[domain.Intent]bool{
	domain.IntentGreeting: true, domain.IntentGratitude: true,
	domain.IntentClosing: true, domain.IntentFAQPricing: true,
	domain.IntentFAQHours: true, domain.IntentFAQContacts: true,
	domain.IntentAskQuestion: true, domain.IntentReportProblem: true,
	domain.IntentRequestFeature: true, domain.IntentComplaint: true,
	domain.IntentInformation: true, domain.IntentResponse: true,
	domain.IntentUnknown: true,
}

func (p *Pipeline) sanitize(raw *out.RawClassification, text string) *domain.ClassificationResult {
	category := domain.Category(raw.Category)
	if !validCategories[category] {
		category = domain.CategoryGeneral
	}
	sentiment := domain.Sentiment(raw.Sentiment)
	if !validSentiments[sentiment] {
		sentiment = domain.SentimentNeutral
	}
	intent := domain.Intent(raw.Intent)
	if !validIntents[intent] {
		intent = domain.IntentInformation
	}

	urgency := 1
	if raw.Urgency != nil {
		urgency = domain.ClampUrgency(*raw.Urgency)
	}

	isProblem := false
	if raw.IsProblem != nil {
		isProblem = *raw.IsProblem
	}

	// Defaults true: a message the model could not rule out deserves eyes.
	needs := true
	if raw.NeedsResponse != nil {
		needs = *raw.NeedsResponse
	}

	autoReply := domain.AutoReplyIntents[intent]
	if raw.AutoReplyAllowed != nil {
		autoReply = *raw.AutoReplyAllowed
	}

	summary := raw.Summary
	if summary == "" {
		summary = summarize(text)
	}
	entities := raw.Entities
	if entities == nil {
		entities = map[string]string{}
	}

	return &domain.ClassificationResult{
		Category:         category,
		Sentiment:        sentiment,
		Intent:           intent,
		Urgency:          urgency,
		IsProblem:        isProblem,
		NeedsResponse:    needs,
		AutoReplyAllowed: autoReply,
		Summary:          summary,
		Entities:         entities,
		Source:           domain.SourceLLM,
		Language:         DetectLanguage(text),
	}
}
