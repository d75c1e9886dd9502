package domain

import "time"

// PatternKind distinguishes how a pattern entry matches text.
type PatternKind string

const (
	PatternKeyword PatternKind = "keyword" // case-insensitive substring
	PatternRegex   PatternKind = "regex"   // full regular expression
	PatternExact   PatternKind = "exact"   // anchored whole-text match
)

// PatternGroup names a semantic capability of the catalog, e.g. "problem
// vocabulary for Uzbek-Latin". Detection logic addresses groups by name and
// never hardcodes vocabulary, so groups can be edited without code changes.
type PatternGroup string

const (
	GroupGreeting          PatternGroup = "greeting"
	GroupGratitude         PatternGroup = "gratitude"
	GroupClosing           PatternGroup = "closing"
	GroupShortConfirmation PatternGroup = "short_confirmation"
	GroupFAQPricing        PatternGroup = "faq_pricing"
	GroupFAQHours          PatternGroup = "faq_hours"
	GroupFAQContacts       PatternGroup = "faq_contacts"

	GroupProblemRu       PatternGroup = "problem_ru"
	GroupProblemUzLatin  PatternGroup = "problem_uz_latin"
	GroupProblemUzCyr    PatternGroup = "problem_uz_cyrillic"
	GroupProblemEn       PatternGroup = "problem_en"
	GroupErrorTokens     PatternGroup = "error_tokens"
	GroupContrastMarkers PatternGroup = "contrast_markers"
	GroupDifferentMarkers PatternGroup = "different_markers"
	GroupBusinessContext PatternGroup = "business_context"

	GroupBilling          PatternGroup = "billing"
	GroupBillingComplaint PatternGroup = "billing_complaint"
	GroupBillingUz        PatternGroup = "billing_uz"
	GroupOnboarding       PatternGroup = "onboarding"
	GroupMediaEvidence    PatternGroup = "media_evidence"
	GroupUrgency          PatternGroup = "urgency"

	GroupPositive    PatternGroup = "positive"
	GroupFrustration PatternGroup = "frustration"
	GroupComplaint   PatternGroup = "complaint_words"
	GroupQuestion       PatternGroup = "question_words"
	GroupQuestionOpener PatternGroup = "question_openers"
	GroupDesire      PatternGroup = "desire_words"

	GroupIntegration PatternGroup = "integration"
	GroupOrder       PatternGroup = "order"
	GroupDelivery    PatternGroup = "delivery"
	GroupBranch      PatternGroup = "branch"
	GroupMenu        PatternGroup = "menu"
	GroupApp         PatternGroup = "app"
)

// PatternRule is one matcher inside a group. Patterns are data, not code:
// the detection engine compiles and evaluates them, nothing more.
type PatternRule struct {
	ID        int64        `json:"id,omitempty"`
	Group     PatternGroup `json:"group"`
	Kind      PatternKind  `json:"kind"`
	Pattern   string       `json:"pattern"`
	Language  Language     `json:"language,omitempty"`

	// Metadata consumed by the simple-intent fast path.
	Intent         Intent `json:"intent,omitempty"`
	AutoReply      bool   `json:"auto_reply"`
	UrgencyScore   int    `json:"urgency_score,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
