package classification

import (
	"strings"
	"unicode"

	"desk_server/core/domain"
)

// =============================================================================
// Heuristics Engine (deterministic fallback classifier)
// =============================================================================

// Analyzer is the deterministic classifier. It holds only the read-only
// catalog, so concurrent analyses share no mutable state.
type Analyzer struct {
	catalog *Catalog
}

// NewAnalyzer creates an analyzer over the given catalog.
func NewAnalyzer(catalog *Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// problemSignals are the independent boolean detectors of step 1.
// Each is computed against the lowercased text; IsProblem is their OR.
// The OR is deliberately permissive: in support triage a false positive
// costs an agent a glance, a false negative loses a client.
type problemSignals struct {
	RuProblem         bool
	UzProblem         bool
	LekinProblem      bool
	BoshqaProblem     bool
	ErrorMessage      bool
	EnProblem         bool
	BillingProblem    bool
	OnboardingRequest bool
	MediaProblem      bool
	QuestionComplaint bool
	IsProblem         bool
}

func (a *Analyzer) detectSignals(lower string) problemSignals {
	c := a.catalog

	business := c.MatchAny(domain.GroupBusinessContext, lower)

	s := problemSignals{
		RuProblem:     c.MatchAny(domain.GroupProblemRu, lower),
		UzProblem:     c.MatchAnyOf(lower, domain.GroupProblemUzLatin, domain.GroupProblemUzCyr),
		LekinProblem:  business && c.MatchAny(domain.GroupContrastMarkers, lower),
		BoshqaProblem: business && c.MatchAny(domain.GroupDifferentMarkers, lower),
		ErrorMessage:  c.MatchAny(domain.GroupErrorTokens, lower),
		EnProblem:     c.MatchAny(domain.GroupProblemEn, lower),
		BillingProblem: c.MatchAnyOf(lower,
			domain.GroupBillingComplaint, domain.GroupBillingUz),
		OnboardingRequest: c.MatchAny(domain.GroupOnboarding, lower),
		MediaProblem:      c.MatchAny(domain.GroupMediaEvidence, lower),
		QuestionComplaint: c.MatchAny(domain.GroupQuestionOpener, lower) &&
			(business || containsDigit(lower)),
	}

	s.IsProblem = s.RuProblem || s.UzProblem || s.LekinProblem ||
		s.BoshqaProblem || s.ErrorMessage || s.EnProblem ||
		s.BillingProblem || s.OnboardingRequest || s.MediaProblem ||
		s.QuestionComplaint

	return s
}

// =============================================================================
// Decision tables
// =============================================================================
//
// Every assignment below is an ordered list of (predicate, outcome) pairs
// evaluated first-match-wins. The order is load-bearing: a billing-flavored
// technical complaint must resolve to billing, not technical.

type categoryRule struct {
	name string
	when func(s problemSignals, lower string, c *Catalog) bool
	cat  domain.Category
}

var categoryTable = []categoryRule{
	{"onboarding", func(s problemSignals, _ string, _ *Catalog) bool {
		return s.OnboardingRequest
	}, domain.CategoryOnboarding},
	{"billing-problem", func(s problemSignals, _ string, _ *Catalog) bool {
		return s.BillingProblem
	}, domain.CategoryBilling},
	{"billing-vocab", func(s problemSignals, lower string, c *Catalog) bool {
		return s.IsProblem && c.MatchAny(domain.GroupBilling, lower)
	}, domain.CategoryBilling},
	{"complaint", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupComplaint, lower)
	}, domain.CategoryComplaint},
	{"technical", func(s problemSignals, _ string, _ *Catalog) bool {
		return s.RuProblem || s.UzProblem || s.EnProblem || s.ErrorMessage ||
			s.LekinProblem || s.BoshqaProblem || s.MediaProblem
	}, domain.CategoryTechnical},
	{"integration", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupIntegration, lower)
	}, domain.CategoryIntegration},
	{"feature-request", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupDesire, lower)
	}, domain.CategoryFeatureRequest},
	{"order", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupOrder, lower)
	}, domain.CategoryOrder},
	{"delivery", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupDelivery, lower)
	}, domain.CategoryDelivery},
	// Branch/region mentions are operational issues; filed as technical.
	{"branch", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupBranch, lower)
	}, domain.CategoryTechnical},
	{"menu", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupMenu, lower)
	}, domain.CategoryMenu},
	{"app", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupApp, lower)
	}, domain.CategoryApp},
	{"question", func(_ problemSignals, lower string, c *Catalog) bool {
		return strings.Contains(lower, "?") || c.MatchAny(domain.GroupQuestion, lower)
	}, domain.CategoryQuestion},
	{"feedback", func(_ problemSignals, lower string, c *Catalog) bool {
		return c.MatchAny(domain.GroupPositive, lower)
	}, domain.CategoryFeedback},
}

func (a *Analyzer) assignCategory(s problemSignals, lower string) domain.Category {
	for _, rule := range categoryTable {
		if rule.when(s, lower, a.catalog) {
			return rule.cat
		}
	}
	return domain.CategoryGeneral
}

func (a *Analyzer) assignSentiment(s problemSignals, lower string) domain.Sentiment {
	switch {
	case a.catalog.MatchAny(domain.GroupPositive, lower):
		return domain.SentimentPositive
	case a.catalog.MatchAnyOf(lower, domain.GroupFrustration, domain.GroupComplaint):
		return domain.SentimentFrustrated
	case s.IsProblem || s.BillingProblem || s.QuestionComplaint:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func (a *Analyzer) assignUrgency(s problemSignals, sentiment domain.Sentiment, lower string) int {
	u := a.catalog.MatchUrgency(domain.GroupUrgency, lower)
	switch {
	case u > 0:
		// the matched rule's own score wins
	case s.IsProblem && sentiment == domain.SentimentFrustrated:
		u = 3
	case s.OnboardingRequest:
		u = 3
	case s.BillingProblem || s.QuestionComplaint:
		u = 3
	case s.IsProblem:
		u = 2
	case strings.Contains(lower, "?"):
		u = 1
	case sentiment == domain.SentimentPositive:
		u = 0
	default:
		u = 1
	}
	return domain.ClampUrgency(u)
}

func (a *Analyzer) assignIntent(s problemSignals, lower string, seed *SimpleIntent) (domain.Intent, bool) {
	if seed != nil {
		return seed.Intent, seed.AutoReply
	}
	// Everything below needs a tailored human answer, so autoReply stays off.
	switch {
	case s.BillingProblem || s.QuestionComplaint:
		return domain.IntentComplaint, false
	case s.IsProblem:
		return domain.IntentReportProblem, false
	case strings.Contains(lower, "?") || a.catalog.MatchAny(domain.GroupQuestion, lower):
		return domain.IntentAskQuestion, false
	case a.catalog.MatchAny(domain.GroupDesire, lower):
		return domain.IntentRequestFeature, false
	case a.catalog.MatchAny(domain.GroupComplaint, lower):
		return domain.IntentComplaint, false
	default:
		return domain.IntentInformation, false
	}
}

func needsResponse(intent domain.Intent, s problemSignals, rawText string) bool {
	endsQuestion := strings.HasSuffix(strings.TrimSpace(rawText), "?")

	switch intent {
	case domain.IntentGratitude, domain.IntentClosing, domain.IntentResponse:
		return endsQuestion
	}

	if s.IsProblem || endsQuestion || intent.IsFAQ() {
		return true
	}
	switch intent {
	case domain.IntentAskQuestion, domain.IntentRequestFeature,
		domain.IntentComplaint, domain.IntentGreeting:
		return true
	}
	return false
}

// summaryLimit is the rune budget of the heuristic summary.
const summaryLimit = 100

func summarize(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit]) + "..."
}

// =============================================================================
// Entry points
// =============================================================================

// AnalyzeWithoutAI runs the full deterministic pipeline. It is a pure
// function of the text: the same input always yields the same result.
func (a *Analyzer) AnalyzeWithoutAI(text string) *domain.ClassificationResult {
	var seed *SimpleIntent
	if si, ok := a.catalog.DetectSimpleIntent(text); ok {
		seed = &si
	}
	return a.analyze(text, seed)
}

// analyze runs steps 1-8 with an optional pre-seeded fast-path intent.
// The fast path is a short-circuit of intent assignment only; every other
// step still runs so the result shape never depends on the path taken.
func (a *Analyzer) analyze(text string, seed *SimpleIntent) *domain.ClassificationResult {
	lower := strings.ToLower(text)

	s := a.detectSignals(lower)
	category := a.assignCategory(s, lower)
	sentiment := a.assignSentiment(s, lower)
	urgency := a.assignUrgency(s, sentiment, lower)
	intent, autoReply := a.assignIntent(s, lower, seed)

	source := domain.SourceHeuristics
	if seed != nil {
		source = domain.SourceFastPath
	}

	return &domain.ClassificationResult{
		Category:         category,
		Sentiment:        sentiment,
		Intent:           intent,
		Urgency:          urgency,
		IsProblem:        s.IsProblem,
		NeedsResponse:    needsResponse(intent, s, text),
		AutoReplyAllowed: autoReply,
		Summary:          summarize(text),
		Entities:         map[string]string{},
		Source:           source,
		Language:         DetectLanguage(text),
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
