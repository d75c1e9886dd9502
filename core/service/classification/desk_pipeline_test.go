package classification

import (
	"context"
	"errors"
	"testing"
	"time"

	"desk_server/core/domain"
	"desk_server/core/port/out"
)

// fakeClassifier scripts the model response for pipeline tests.
type fakeClassifier struct {
	raw   *out.RawClassification
	err   error
	calls int
}

func (f *fakeClassifier) ClassifyMessage(ctx context.Context, text string) (*out.RawClassification, error) {
	f.calls++
	return f.raw, f.err
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestPipelineUsesModelResult(t *testing.T) {
	fake := &fakeClassifier{
		raw: &out.RawClassification{
			Category:      "billing",
			Sentiment:     "frustrated",
			Intent:        "complaint",
			Urgency:       intPtr(4),
			IsProblem:     boolPtr(true),
			NeedsResponse: boolPtr(true),
			Summary:       "double charge on invoice",
		},
	}
	p := NewPipeline(newTestAnalyzer(), fake, nil)

	got := p.Classify(context.Background(), "Нас списали дважды за один заказ")

	if fake.calls != 1 {
		t.Fatalf("model called %d times, want 1", fake.calls)
	}
	if got.Source != domain.SourceLLM {
		t.Errorf("source = %q, want %q", got.Source, domain.SourceLLM)
	}
	if got.Category != domain.CategoryBilling {
		t.Errorf("category = %q, want billing", got.Category)
	}
	if got.Urgency != 4 {
		t.Errorf("urgency = %d, want 4", got.Urgency)
	}
	if got.Summary != "double charge on invoice" {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestPipelineFallsBackOnModelError(t *testing.T) {
	fake := &fakeClassifier{err: errors.New("upstream 500")}
	p := NewPipeline(newTestAnalyzer(), fake, nil)

	got := p.Classify(context.Background(), "Не работает касса")

	if got == nil {
		t.Fatal("expected a result, got nil")
	}
	if got.Source != domain.SourceHeuristics {
		t.Errorf("source = %q, want %q", got.Source, domain.SourceHeuristics)
	}
	if got.Category != domain.CategoryTechnical {
		t.Errorf("category = %q, want technical", got.Category)
	}
	if !got.IsProblem {
		t.Error("expected isProblem from heuristics fallback")
	}
}

func TestPipelineWithoutModel(t *testing.T) {
	p := NewPipeline(newTestAnalyzer(), nil, nil)

	got := p.Classify(context.Background(), "Приложение выдает ошибку")
	if got.Source != domain.SourceHeuristics {
		t.Errorf("source = %q, want %q", got.Source, domain.SourceHeuristics)
	}
}

func TestPipelineFastPathSkipsModel(t *testing.T) {
	fake := &fakeClassifier{raw: &out.RawClassification{Category: "general"}}
	p := NewPipeline(newTestAnalyzer(), fake, nil)

	got := p.Classify(context.Background(), "Спасибо большое!")

	if fake.calls != 0 {
		t.Errorf("model called %d times for a fixed-form utterance, want 0", fake.calls)
	}
	if got.Intent != domain.IntentGratitude {
		t.Errorf("intent = %q, want gratitude", got.Intent)
	}
	if got.Source != domain.SourceFastPath {
		t.Errorf("source = %q, want %q", got.Source, domain.SourceFastPath)
	}
}

func TestSanitizeDegradesInvalidFields(t *testing.T) {
	p := NewPipeline(newTestAnalyzer(), nil, nil)

	tests := []struct {
		name string
		raw  *out.RawClassification
		want func(t *testing.T, got *domain.ClassificationResult)
	}{
		{
			name: "unknown enums degrade to defaults",
			raw: &out.RawClassification{
				Category:  "spam",
				Sentiment: "ecstatic",
				Intent:    "world domination",
			},
			want: func(t *testing.T, got *domain.ClassificationResult) {
				if got.Category != domain.CategoryGeneral {
					t.Errorf("category = %q, want general", got.Category)
				}
				if got.Sentiment != domain.SentimentNeutral {
					t.Errorf("sentiment = %q, want neutral", got.Sentiment)
				}
				if got.Intent != domain.IntentInformation {
					t.Errorf("intent = %q, want information", got.Intent)
				}
			},
		},
		{
			name: "urgency clamped to range",
			raw: &out.RawClassification{
				Category: "technical",
				Urgency:  intPtr(99),
			},
			want: func(t *testing.T, got *domain.ClassificationResult) {
				if got.Urgency != 5 {
					t.Errorf("urgency = %d, want 5", got.Urgency)
				}
			},
		},
		{
			name: "omitted needs_response defaults to true",
			raw:  &out.RawClassification{Category: "question"},
			want: func(t *testing.T, got *domain.ClassificationResult) {
				if !got.NeedsResponse {
					t.Error("needsResponse should default to true")
				}
			},
		},
		{
			name: "explicit false needs_response is kept",
			raw: &out.RawClassification{
				Category:      "feedback",
				NeedsResponse: boolPtr(false),
			},
			want: func(t *testing.T, got *domain.ClassificationResult) {
				if got.NeedsResponse {
					t.Error("explicit needsResponse=false should be kept")
				}
			},
		},
		{
			name: "empty summary falls back to text",
			raw:  &out.RawClassification{Category: "general"},
			want: func(t *testing.T, got *domain.ClassificationResult) {
				if got.Summary == "" {
					t.Error("summary should fall back to message text")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.sanitize(tt.raw, "какой-то текст сообщения")
			tt.want(t, got)
		})
	}
}

func TestPipelineModelTimeout(t *testing.T) {
	slow := &slowClassifier{delay: 100 * time.Millisecond}
	p := NewPipeline(newTestAnalyzer(), slow, &PipelineConfig{LLMTimeout: 5 * time.Millisecond})

	got := p.Classify(context.Background(), "Не приходит смс код")
	if got.Source != domain.SourceHeuristics {
		t.Errorf("source = %q, want heuristics after timeout", got.Source)
	}
}

type slowClassifier struct {
	delay time.Duration
}

func (s *slowClassifier) ClassifyMessage(ctx context.Context, text string) (*out.RawClassification, error) {
	select {
	case <-time.After(s.delay):
		return &out.RawClassification{Category: "general"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
