package classification

import (
	"testing"

	"desk_server/core/domain"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(NewDefaultCatalog())
}

func TestAnalyzeWithoutAI(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name          string
		text          string
		wantCategory  domain.Category
		wantSentiment domain.Sentiment
		wantUrgency   int
		wantProblem   bool
	}{
		{
			name:          "Russian technical problem",
			text:          "Не работает касса, выдает ошибку",
			wantCategory:  domain.CategoryTechnical,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   2,
			wantProblem:   true,
		},
		{
			name:          "Uzbek Latin technical problem",
			text:          "Kassa ishlamayapti, yordam kerak",
			wantCategory:  domain.CategoryTechnical,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   2,
			wantProblem:   true,
		},
		{
			name:          "amount discrepancy question is billing",
			text:          "Почему списали 50000 если вчера было 30000?",
			wantCategory:  domain.CategoryBilling,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   3,
			wantProblem:   true,
		},
		{
			name:          "Uzbek wrong amount is billing",
			text:          "Summa noto'g'ri chiqyapti",
			wantCategory:  domain.CategoryBilling,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   3,
			wantProblem:   true,
		},
		{
			name:          "English payment error is billing",
			text:          "Payment error, please help",
			wantCategory:  domain.CategoryBilling,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   2,
			wantProblem:   true,
		},
		{
			name:          "urgency keyword escalates",
			text:          "Срочно! Не работает терминал",
			wantCategory:  domain.CategoryTechnical,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   4,
			wantProblem:   true,
		},
		{
			name:          "repeated failure reads frustrated",
			text:          "Опять не работает, сколько можно!",
			wantCategory:  domain.CategoryTechnical,
			wantSentiment: domain.SentimentFrustrated,
			wantUrgency:   3,
			wantProblem:   true,
		},
		{
			name:          "positive feedback",
			text:          "Всё работает, спасибо вам",
			wantCategory:  domain.CategoryFeedback,
			wantSentiment: domain.SentimentPositive,
			wantUrgency:   0,
			wantProblem:   false,
		},
		{
			name:          "onboarding request",
			text:          "Хотим подключиться к вашей системе",
			wantCategory:  domain.CategoryOnboarding,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   3,
			wantProblem:   true,
		},
		{
			name:          "business term plus contrast marker",
			text:          "Сделал заказ но пришел другой",
			wantCategory:  domain.CategoryTechnical,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   2,
			wantProblem:   true,
		},
		{
			name:          "pasted error line",
			text:          "error: connection refused, timeout after 30s",
			wantCategory:  domain.CategoryTechnical,
			wantSentiment: domain.SentimentNegative,
			wantUrgency:   2,
			wantProblem:   true,
		},
		{
			name:          "plain question",
			text:          "Когда появится новый отчет?",
			wantCategory:  domain.CategoryQuestion,
			wantSentiment: domain.SentimentNeutral,
			wantUrgency:   1,
			wantProblem:   false,
		},
		{
			name:          "neutral statement",
			text:          "Мы вчера обновили приложение",
			wantCategory:  domain.CategoryApp,
			wantSentiment: domain.SentimentNeutral,
			wantUrgency:   1,
			wantProblem:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.AnalyzeWithoutAI(tt.text)

			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Sentiment != tt.wantSentiment {
				t.Errorf("sentiment = %q, want %q", got.Sentiment, tt.wantSentiment)
			}
			if got.Urgency != tt.wantUrgency {
				t.Errorf("urgency = %d, want %d", got.Urgency, tt.wantUrgency)
			}
			if got.IsProblem != tt.wantProblem {
				t.Errorf("isProblem = %v, want %v", got.IsProblem, tt.wantProblem)
			}
		})
	}
}

func TestAnalyzeUrgencyScoreFromRule(t *testing.T) {
	// Built-in urgency vocabulary carries a score of 4.
	got := newTestAnalyzer().AnalyzeWithoutAI("Срочно! Не работает терминал")
	if got.Urgency != 4 {
		t.Errorf("built-in urgency = %d, want 4", got.Urgency)
	}

	// An override group replaces the vocabulary and its score.
	override := &domain.PatternRule{
		Group:        domain.GroupUrgency,
		Kind:         domain.PatternKeyword,
		Pattern:      "авария",
		Language:     domain.LangRussian,
		UrgencyScore: 5,
		IsActive:     true,
	}
	catalog, err := NewCatalog(MergeOverrides(DefaultRules(), []*domain.PatternRule{override}))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	got = NewAnalyzer(catalog).AnalyzeWithoutAI("Авария, не работает терминал")
	if got.Urgency != 5 {
		t.Errorf("override urgency = %d, want the rule's score 5", got.Urgency)
	}
}

func TestAnalyzeNeedsResponse(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"problem report", "Не работает печать чеков", true},
		{"ends with question mark", "Какой у вас тариф?", true},
		{"FAQ pricing", "сколько стоит", true},
		{"greeting", "Здравствуйте", true},
		{"gratitude closes the loop", "Спасибо большое", false},
		{"short confirmation", "хорошо", false},
		{"gratitude with follow-up question", "Спасибо?", true},
		{"neutral statement", "Мы обновили меню вчера", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.AnalyzeWithoutAI(tt.text)
			if got.NeedsResponse != tt.want {
				t.Errorf("needsResponse(%q) = %v, want %v", tt.text, got.NeedsResponse, tt.want)
			}
		})
	}
}

func TestAnalyzeFastPathSeedsIntent(t *testing.T) {
	analyzer := newTestAnalyzer()

	got := analyzer.AnalyzeWithoutAI("Здравствуйте!")
	if got.Intent != domain.IntentGreeting {
		t.Errorf("intent = %q, want %q", got.Intent, domain.IntentGreeting)
	}
	if !got.AutoReplyAllowed {
		t.Error("greeting should allow auto-reply")
	}
	if got.Source != domain.SourceFastPath {
		t.Errorf("source = %q, want %q", got.Source, domain.SourceFastPath)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	analyzer := newTestAnalyzer()
	text := "Срочно: приложение выдает ошибку при оплате заказа!"

	first := analyzer.AnalyzeWithoutAI(text)
	for i := 0; i < 5; i++ {
		got := analyzer.AnalyzeWithoutAI(text)
		if got.Category != first.Category || got.Sentiment != first.Sentiment ||
			got.Urgency != first.Urgency || got.Intent != first.Intent ||
			got.IsProblem != first.IsProblem || got.NeedsResponse != first.NeedsResponse {
			t.Fatalf("run %d differed: %+v vs %+v", i, got, first)
		}
	}
}
