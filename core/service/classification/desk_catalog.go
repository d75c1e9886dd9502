// Package classification implements the deterministic message classification
// pipeline: a pattern catalog, a fixed-form fast path, a multi-signal
// heuristics engine and an orchestrator that may delegate to an external
// model but always degrades to the heuristics result.
package classification

import (
	"fmt"
	"regexp"
	"strings"

	"desk_server/core/domain"
)

// =============================================================================
// Compiled Pattern Catalog
// =============================================================================

// compiledRule is a single matcher ready for evaluation.
type compiledRule struct {
	kind      domain.PatternKind
	keyword   string // lowercased, for PatternKeyword
	re        *regexp.Regexp
	intent    domain.Intent
	autoReply bool
	urgency   int
}

// Catalog is the read-only pattern catalog consumed by every detector.
// It is built once at startup (defaults merged with persisted overrides)
// and passed explicitly into the analyzer, never looked up ambiently.
type Catalog struct {
	groups map[domain.PatternGroup][]compiledRule
}

// fastPathOrder fixes the priority of the simple-intent fast path.
// First matching group wins.
var fastPathOrder = []domain.PatternGroup{
	domain.GroupGreeting,
	domain.GroupGratitude,
	domain.GroupClosing,
	domain.GroupShortConfirmation,
	domain.GroupFAQPricing,
	domain.GroupFAQHours,
	domain.GroupFAQContacts,
}

// NewCatalog compiles a rule set into a catalog. Invalid regular expressions
// fail construction; a deployment with a broken override should not start.
func NewCatalog(rules []*domain.PatternRule) (*Catalog, error) {
	c := &Catalog{groups: make(map[domain.PatternGroup][]compiledRule)}

	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		cr := compiledRule{
			kind:      r.Kind,
			intent:    r.Intent,
			autoReply: r.AutoReply,
			urgency:   r.UrgencyScore,
		}
		switch r.Kind {
		case domain.PatternKeyword:
			cr.keyword = strings.ToLower(r.Pattern)
		case domain.PatternRegex:
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("group %s: bad pattern %q: %w", r.Group, r.Pattern, err)
			}
			cr.re = re
		case domain.PatternExact:
			// Anchored whole-text match, tolerant of trailing punctuation.
			re, err := regexp.Compile(`(?i)^(?:` + r.Pattern + `)[\s!?.,)]*$`)
			if err != nil {
				return nil, fmt.Errorf("group %s: bad pattern %q: %w", r.Group, r.Pattern, err)
			}
			cr.re = re
		default:
			return nil, fmt.Errorf("group %s: unknown pattern kind %q", r.Group, r.Kind)
		}
		c.groups[r.Group] = append(c.groups[r.Group], cr)
	}

	return c, nil
}

// NewDefaultCatalog builds the catalog from the built-in rule set.
func NewDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultRules())
	if err != nil {
		// Built-in rules are compiled in tests; this is unreachable with
		// a released binary.
		panic(err)
	}
	return c
}

// MergeOverrides replaces built-in groups with persisted ones. Override
// granularity is the whole group: one custom rule for "greeting" replaces
// every default greeting rule, matching how the source system's settings
// store behaves.
func MergeOverrides(defaults, overrides []*domain.PatternRule) []*domain.PatternRule {
	if len(overrides) == 0 {
		return defaults
	}

	overridden := make(map[domain.PatternGroup]bool)
	for _, r := range overrides {
		if r.IsActive {
			overridden[r.Group] = true
		}
	}

	merged := make([]*domain.PatternRule, 0, len(defaults)+len(overrides))
	for _, r := range defaults {
		if !overridden[r.Group] {
			merged = append(merged, r)
		}
	}
	merged = append(merged, overrides...)
	return merged
}

// MatchAny reports whether any rule of the group matches the lowercased
// text. Keyword rules use substring containment, regex rules a search.
func (c *Catalog) MatchAny(group domain.PatternGroup, lowerText string) bool {
	for _, r := range c.groups[group] {
		if r.matches(lowerText) {
			return true
		}
	}
	return false
}

// MatchUrgency returns the highest urgency score among the group's
// matching rules, or 0 when nothing matches. Built-in urgency vocabulary
// carries a score per rule; overrides can tune it per deployment.
func (c *Catalog) MatchUrgency(group domain.PatternGroup, lowerText string) int {
	max := 0
	for _, r := range c.groups[group] {
		if r.urgency > max && r.matches(lowerText) {
			max = r.urgency
		}
	}
	return max
}

// MatchAnyOf reports whether any of the groups matches.
func (c *Catalog) MatchAnyOf(lowerText string, groups ...domain.PatternGroup) bool {
	for _, g := range groups {
		if c.MatchAny(g, lowerText) {
			return true
		}
	}
	return false
}

func (r *compiledRule) matches(lowerText string) bool {
	switch r.kind {
	case domain.PatternKeyword:
		return strings.Contains(lowerText, r.keyword)
	default:
		return r.re.MatchString(lowerText)
	}
}

// =============================================================================
// Simple-Intent Fast Path
// =============================================================================

// SimpleIntent is the fast-path result for a fixed-form utterance.
type SimpleIntent struct {
	Intent    domain.Intent
	AutoReply bool
}

// DetectSimpleIntent matches the entire trimmed text against the fixed-form
// groups in priority order. Short transactional replies ("ok", "rahmat",
// "спасибо") must never reach the multi-signal pipeline unseeded, so the
// first matching rule wins and returns its intent and auto-reply flag.
func (c *Catalog) DetectSimpleIntent(text string) (SimpleIntent, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SimpleIntent{}, false
	}

	for _, group := range fastPathOrder {
		for _, r := range c.groups[group] {
			if r.re != nil && r.re.MatchString(trimmed) {
				return SimpleIntent{Intent: r.intent, AutoReply: r.autoReply}, true
			}
		}
	}
	return SimpleIntent{}, false
}
