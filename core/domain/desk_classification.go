package domain

// Category is the support-topic bucket assigned to a message.
type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryIntegration    Category = "integration"
	CategoryBilling        Category = "billing"
	CategoryComplaint      Category = "complaint"
	CategoryFeatureRequest Category = "feature_request"
	CategoryOrder          Category = "order"
	CategoryDelivery       Category = "delivery"
	CategoryMenu           Category = "menu"
	CategoryApp            Category = "app"
	CategoryOnboarding     Category = "onboarding"
	CategoryQuestion       Category = "question"
	CategoryFeedback       Category = "feedback"
	CategoryGeneral        Category = "general"
)

// Sentiment is the emotional tone of a message.
type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNeutral    Sentiment = "neutral"
	SentimentNegative   Sentiment = "negative"
	SentimentFrustrated Sentiment = "frustrated"
)

// Intent is the communicative purpose of a single message.
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentGratitude      Intent = "gratitude"
	IntentClosing        Intent = "closing"
	IntentFAQPricing     Intent = "faq_pricing"
	IntentFAQHours       Intent = "faq_hours"
	IntentFAQContacts    Intent = "faq_contacts"
	IntentAskQuestion    Intent = "ask_question"
	IntentReportProblem  Intent = "report_problem"
	IntentRequestFeature Intent = "request_feature"
	IntentComplaint      Intent = "complaint"
	IntentInformation    Intent = "information"
	IntentResponse       Intent = "response"
	IntentUnknown        Intent = "unknown"
)

// IsFAQ reports whether the intent is one of the fixed FAQ triggers.
func (i Intent) IsFAQ() bool {
	return i == IntentFAQPricing || i == IntentFAQHours || i == IntentFAQContacts
}

// AutoReplyIntents is the fixed set of intents safe for a templated reply
// without human review.
var AutoReplyIntents = map[Intent]bool{
	IntentGreeting:    true,
	IntentGratitude:   true,
	IntentClosing:     true,
	IntentFAQPricing:  true,
	IntentFAQHours:    true,
	IntentFAQContacts: true,
}

// MinUrgency and MaxUrgency bound the 0-5 urgency scale.
const (
	MinUrgency = 0
	MaxUrgency = 5
)

// ClampUrgency forces an urgency score into [0,5].
func ClampUrgency(u int) int {
	if u < MinUrgency {
		return MinUrgency
	}
	if u > MaxUrgency {
		return MaxUrgency
	}
	return u
}

// ClassificationSource indicates how a classification was produced.
type ClassificationSource string

const (
	SourceFastPath   ClassificationSource = "fast_path"
	SourceHeuristics ClassificationSource = "heuristics"
	SourceLLM        ClassificationSource = "llm"
)

// ClassificationResult is the value object produced once per inbound message.
// It is consumed immediately by the triage evaluator and projected onto
// message/case/channel columns by the persistence layer; it is never stored
// as an entity of its own.
type ClassificationResult struct {
	Category         Category             `json:"category"`
	Sentiment        Sentiment            `json:"sentiment"`
	Intent           Intent               `json:"intent"`
	Urgency          int                  `json:"urgency"`
	IsProblem        bool                 `json:"is_problem"`
	NeedsResponse    bool                 `json:"needs_response"`
	AutoReplyAllowed bool                 `json:"auto_reply_allowed"`
	Summary          string               `json:"summary"`
	Entities         map[string]string    `json:"entities,omitempty"`
	Source           ClassificationSource `json:"source"`
	Language         Language             `json:"language,omitempty"`
}

// Language is the detected dominant script/language of a message.
// The ru/uz-Cyrillic ambiguity is deliberate: Cyrillic text without a
// script-specific letter stays "mixed" rather than being guessed.
type Language string

const (
	LangUzLatin    Language = "uz_latin"
	LangUzCyrillic Language = "uz_cyrillic"
	LangRussian    Language = "ru"
	LangEnglish    Language = "en"
	LangMixed      Language = "mixed"
)
