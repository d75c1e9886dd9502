package classification

import (
	"testing"

	"desk_server/core/domain"
)

func TestDetectSimpleIntent(t *testing.T) {
	catalog := NewDefaultCatalog()

	tests := []struct {
		name          string
		text          string
		wantIntent    domain.Intent
		wantAutoReply bool
		wantMatch     bool
	}{
		{
			name:          "Russian greeting",
			text:          "Здравствуйте!",
			wantIntent:    domain.IntentGreeting,
			wantAutoReply: true,
			wantMatch:     true,
		},
		{
			name:          "Uzbek greeting",
			text:          "Assalomu alaykum",
			wantIntent:    domain.IntentGreeting,
			wantAutoReply: true,
			wantMatch:     true,
		},
		{
			name:          "Russian gratitude with trailing punctuation",
			text:          "Спасибо большое!!!",
			wantIntent:    domain.IntentGratitude,
			wantAutoReply: true,
			wantMatch:     true,
		},
		{
			name:          "Uzbek gratitude transliteration variant",
			text:          "raxmat",
			wantIntent:    domain.IntentGratitude,
			wantAutoReply: true,
			wantMatch:     true,
		},
		{
			name:          "short confirmation is not auto-replied",
			text:          "хорошо",
			wantIntent:    domain.IntentResponse,
			wantAutoReply: false,
			wantMatch:     true,
		},
		{
			name:          "pricing FAQ",
			text:          "сколько стоит?",
			wantIntent:    domain.IntentFAQPricing,
			wantAutoReply: true,
			wantMatch:     true,
		},
		{
			name:          "working hours FAQ in Uzbek",
			text:          "ish vaqtingiz qanday",
			wantIntent:    domain.IntentFAQHours,
			wantAutoReply: true,
			wantMatch:     true,
		},
		{
			name:      "greeting embedded in a real request does not match",
			text:      "Здравствуйте, у нас не работает касса",
			wantMatch: false,
		},
		{
			name:      "substantive message does not match",
			text:      "Приложение выдает ошибку при оплате",
			wantMatch: false,
		},
		{
			name:      "empty text does not match",
			text:      "   ",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si, ok := catalog.DetectSimpleIntent(tt.text)
			if ok != tt.wantMatch {
				t.Fatalf("DetectSimpleIntent(%q) matched = %v, want %v", tt.text, ok, tt.wantMatch)
			}
			if !tt.wantMatch {
				return
			}
			if si.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", si.Intent, tt.wantIntent)
			}
			if si.AutoReply != tt.wantAutoReply {
				t.Errorf("autoReply = %v, want %v", si.AutoReply, tt.wantAutoReply)
			}
		})
	}
}

func TestNewCatalogRejectsBadPattern(t *testing.T) {
	rules := []*domain.PatternRule{
		{
			Group:    domain.GroupGreeting,
			Kind:     domain.PatternRegex,
			Pattern:  "(unclosed",
			IsActive: true,
		},
	}
	if _, err := NewCatalog(rules); err == nil {
		t.Fatal("expected error for invalid regex, got nil")
	}
}

func TestNewCatalogSkipsInactiveRules(t *testing.T) {
	rules := []*domain.PatternRule{
		{
			Group:    domain.GroupProblemEn,
			Kind:     domain.PatternKeyword,
			Pattern:  "not working",
			IsActive: false,
		},
	}
	c, err := NewCatalog(rules)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if c.MatchAny(domain.GroupProblemEn, "it is not working") {
		t.Error("inactive rule should not match")
	}
}

func TestMergeOverrides(t *testing.T) {
	defaults := []*domain.PatternRule{
		{Group: domain.GroupGreeting, Kind: domain.PatternExact, Pattern: "hello", IsActive: true},
		{Group: domain.GroupGratitude, Kind: domain.PatternExact, Pattern: "thanks", IsActive: true},
	}
	overrides := []*domain.PatternRule{
		{Group: domain.GroupGreeting, Kind: domain.PatternExact, Pattern: "howdy", IsActive: true},
	}

	merged := MergeOverrides(defaults, overrides)

	var greetings, gratitudes []string
	for _, r := range merged {
		switch r.Group {
		case domain.GroupGreeting:
			greetings = append(greetings, r.Pattern)
		case domain.GroupGratitude:
			gratitudes = append(gratitudes, r.Pattern)
		}
	}

	// The override replaces the whole greeting group.
	if len(greetings) != 1 || greetings[0] != "howdy" {
		t.Errorf("greeting group = %v, want [howdy]", greetings)
	}
	// Untouched groups keep their defaults.
	if len(gratitudes) != 1 || gratitudes[0] != "thanks" {
		t.Errorf("gratitude group = %v, want [thanks]", gratitudes)
	}
}

func TestMergeOverridesEmpty(t *testing.T) {
	defaults := DefaultRules()
	merged := MergeOverrides(defaults, nil)
	if len(merged) != len(defaults) {
		t.Errorf("expected defaults unchanged, got %d rules, want %d", len(merged), len(defaults))
	}
}

func TestDefaultRulesCompile(t *testing.T) {
	if _, err := NewCatalog(DefaultRules()); err != nil {
		t.Fatalf("built-in rules failed to compile: %v", err)
	}
}
