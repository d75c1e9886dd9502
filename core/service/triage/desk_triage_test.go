package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"desk_server/core/domain"
)

// fakeMessageRepo implements out.MessageRepository in memory. Only the
// methods the evaluator touches have behavior; the rest are inert.
type fakeMessageRepo struct {
	staffReplied   bool
	staffErr       error
	linkedCase     map[int64]int64 // message id -> case id
	linkErr        error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{linkedCase: make(map[int64]int64)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message) error { return nil }
func (r *fakeMessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	return nil, nil
}
func (r *fakeMessageRepo) GetByExternalID(ctx context.Context, channelID int64, externalID string) (*domain.Message, error) {
	return nil, nil
}
func (r *fakeMessageRepo) List(ctx context.Context, filter *domain.MessageFilter, page *domain.PageRequest) ([]*domain.Message, int64, error) {
	return nil, 0, nil
}
func (r *fakeMessageRepo) UpdateClassification(ctx context.Context, id int64, result *domain.ClassificationResult) error {
	return nil
}
func (r *fakeMessageRepo) LinkCase(ctx context.Context, id int64, caseID int64) error {
	if r.linkErr != nil {
		return r.linkErr
	}
	r.linkedCase[id] = caseID
	return nil
}
func (r *fakeMessageRepo) HasStaffMessageSince(ctx context.Context, channelID int64, since time.Time) (bool, error) {
	return r.staffReplied, r.staffErr
}

type fakeCaseRepo struct {
	recent    *domain.Case
	recentErr error
	createErr error
	created   []*domain.Case
	appended  []int64
	nextID    int64
}

func (r *fakeCaseRepo) Create(ctx context.Context, c *domain.Case) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	c.ID = r.nextID
	r.created = append(r.created, c)
	return nil
}
func (r *fakeCaseRepo) GetByID(ctx context.Context, id int64) (*domain.Case, error) { return nil, nil }
func (r *fakeCaseRepo) List(ctx context.Context, filter *domain.CaseFilter, page *domain.PageRequest) ([]*domain.Case, int64, error) {
	return nil, 0, nil
}
func (r *fakeCaseRepo) FindRecentOpen(ctx context.Context, channelID int64, createdAfter time.Time) (*domain.Case, error) {
	return r.recent, r.recentErr
}
func (r *fakeCaseRepo) AppendMessage(ctx context.Context, caseID int64) error {
	r.appended = append(r.appended, caseID)
	return nil
}
func (r *fakeCaseRepo) UpdateStatus(ctx context.Context, id int64, status domain.CaseStatus) error {
	return nil
}
func (r *fakeCaseRepo) UpdatePriority(ctx context.Context, id int64, priority domain.CasePriority, severity domain.CaseSeverity) error {
	return nil
}

type fakeChannelRepo struct {
	channel       *domain.Channel
	awaitingSet   []bool
	raisedTo      []domain.CasePriority
	setErr        error
}

func (r *fakeChannelRepo) GetByID(ctx context.Context, id int64) (*domain.Channel, error) {
	if r.channel == nil {
		return nil, errors.New("channel not found")
	}
	return r.channel, nil
}
func (r *fakeChannelRepo) GetOrCreateByExternalID(ctx context.Context, externalID, title string) (*domain.Channel, error) {
	return r.channel, nil
}
func (r *fakeChannelRepo) List(ctx context.Context, page *domain.PageRequest) ([]*domain.Channel, int64, error) {
	return nil, 0, nil
}
func (r *fakeChannelRepo) SetAwaitingReply(ctx context.Context, id int64, awaiting bool) error {
	if r.setErr != nil {
		return r.setErr
	}
	r.awaitingSet = append(r.awaitingSet, awaiting)
	return nil
}
func (r *fakeChannelRepo) RaisePriority(ctx context.Context, id int64, atLeast domain.CasePriority) error {
	r.raisedTo = append(r.raisedTo, atLeast)
	return nil
}

type fakeLocker struct {
	acquired int
	released int
	denied   bool // deny every attempt
	denials  int  // deny this many attempts before granting
	err      error
}

func (l *fakeLocker) Acquire(ctx context.Context, channelID int64) (bool, error) {
	l.acquired++
	if l.err != nil {
		return false, l.err
	}
	if l.denied || l.acquired <= l.denials {
		return false, nil
	}
	return true, nil
}
func (l *fakeLocker) Release(ctx context.Context, channelID int64) { l.released++ }

type fakeReplySender struct {
	sent []string
	err  error
}

func (s *fakeReplySender) SendReply(ctx context.Context, channelExternalID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

type triageFixture struct {
	messages *fakeMessageRepo
	cases    *fakeCaseRepo
	channels *fakeChannelRepo
	locker   *fakeLocker
	replies  *fakeReplySender
	eval     *Evaluator
}

func newFixture() *triageFixture {
	f := &triageFixture{
		messages: newFakeMessageRepo(),
		cases:    &fakeCaseRepo{},
		channels: &fakeChannelRepo{channel: &domain.Channel{ID: 7, ExternalID: "-100123"}},
		locker:   &fakeLocker{},
		replies:  &fakeReplySender{},
	}
	f.eval = NewEvaluator(f.messages, f.cases, f.channels, f.locker, f.replies)
	return f
}

func clientMessage() *domain.Message {
	return &domain.Message{ID: 42, ChannelID: 7, Role: domain.RoleClient, Text: "Терминал не работает"}
}

func problemResult(urgency int) *domain.ClassificationResult {
	return &domain.ClassificationResult{
		Category:      domain.CategoryTechnical,
		Sentiment:     domain.SentimentNegative,
		Intent:        domain.IntentReportProblem,
		Urgency:       urgency,
		IsProblem:     true,
		NeedsResponse: true,
		Summary:       "Терминал не работает",
		Language:      domain.LangRussian,
	}
}

func TestEvaluateTicketNotNeeded(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.ClassificationResult)
	}{
		{"not a problem", func(r *domain.ClassificationResult) { r.IsProblem = false }},
		{"no response needed", func(r *domain.ClassificationResult) { r.NeedsResponse = false }},
		{"urgency below threshold", func(r *domain.ClassificationResult) { r.Urgency = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			result := problemResult(3)
			tt.mutate(result)

			outcome := f.eval.Evaluate(context.Background(), clientMessage(), result)

			if outcome.Action != domain.TicketNotNeeded {
				t.Fatalf("action = %q, want %q", outcome.Action, domain.TicketNotNeeded)
			}
			if len(f.cases.created) != 0 {
				t.Errorf("created %d cases, want 0", len(f.cases.created))
			}
			if f.locker.acquired != 0 {
				t.Errorf("lock acquired for a non-warranted message")
			}
		})
	}
}

func TestEvaluateSkipsMessageAlreadyInCase(t *testing.T) {
	f := newFixture()
	msg := clientMessage()
	existing := int64(99)
	msg.CaseID = &existing

	outcome := f.eval.Evaluate(context.Background(), msg, problemResult(4))

	if outcome.Action != domain.TicketSkippedExisting {
		t.Fatalf("action = %q, want %q", outcome.Action, domain.TicketSkippedExisting)
	}
	if outcome.CaseID != existing {
		t.Errorf("case id = %d, want %d", outcome.CaseID, existing)
	}
	if len(f.cases.created) != 0 {
		t.Errorf("created a case for an already-ticketed message")
	}
}

func TestEvaluateCreatesCase(t *testing.T) {
	f := newFixture()
	msg := clientMessage()

	outcome := f.eval.Evaluate(context.Background(), msg, problemResult(3))

	if outcome.Action != domain.TicketCreated {
		t.Fatalf("action = %q, want %q", outcome.Action, domain.TicketCreated)
	}
	if len(f.cases.created) != 1 {
		t.Fatalf("created %d cases, want 1", len(f.cases.created))
	}
	c := f.cases.created[0]
	if c.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want %q", c.Priority, domain.PriorityMedium)
	}
	if c.Status != domain.CaseStatusOpen {
		t.Errorf("status = %q, want %q", c.Status, domain.CaseStatusOpen)
	}
	if c.Title != "Терминал не работает" {
		t.Errorf("title = %q", c.Title)
	}
	if c.FirstMessageID != msg.ID {
		t.Errorf("first message id = %d, want %d", c.FirstMessageID, msg.ID)
	}
	if got := f.messages.linkedCase[msg.ID]; got != c.ID {
		t.Errorf("message linked to case %d, want %d", got, c.ID)
	}
	if f.locker.acquired != 1 || f.locker.released != 1 {
		t.Errorf("lock acquire/release = %d/%d, want 1/1", f.locker.acquired, f.locker.released)
	}
}

func TestEvaluatePriorityMapping(t *testing.T) {
	tests := []struct {
		urgency int
		want    domain.CasePriority
	}{
		{2, domain.PriorityMedium},
		{3, domain.PriorityMedium},
		{4, domain.PriorityHigh},
		{5, domain.PriorityUrgent},
	}
	for _, tt := range tests {
		f := newFixture()
		outcome := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(tt.urgency))
		if outcome.Priority != tt.want {
			t.Errorf("urgency %d: priority = %q, want %q", tt.urgency, outcome.Priority, tt.want)
		}
	}
}

func TestEvaluateGroupsIntoRecentCase(t *testing.T) {
	f := newFixture()
	f.cases.recent = &domain.Case{
		ID:        11,
		ChannelID: 7,
		Status:    domain.CaseStatusOpen,
		Priority:  domain.PriorityHigh,
		CreatedAt: time.Now().Add(-5 * time.Minute),
	}
	msg := clientMessage()

	outcome := f.eval.Evaluate(context.Background(), msg, problemResult(3))

	if outcome.Action != domain.TicketGrouped {
		t.Fatalf("action = %q, want %q", outcome.Action, domain.TicketGrouped)
	}
	if outcome.CaseID != 11 {
		t.Errorf("case id = %d, want 11", outcome.CaseID)
	}
	if outcome.Priority != domain.PriorityHigh {
		t.Errorf("priority = %q, want the open case's priority", outcome.Priority)
	}
	if len(f.cases.appended) != 1 || f.cases.appended[0] != 11 {
		t.Errorf("appended = %v, want [11]", f.cases.appended)
	}
	if got := f.messages.linkedCase[msg.ID]; got != 11 {
		t.Errorf("message linked to case %d, want 11", got)
	}
	if len(f.cases.created) != 0 {
		t.Errorf("created a new case despite an open recent one")
	}
}

func TestEvaluateStaffReplyBreaksGrouping(t *testing.T) {
	f := newFixture()
	f.cases.recent = &domain.Case{
		ID:        11,
		Status:    domain.CaseStatusOpen,
		CreatedAt: time.Now().Add(-5 * time.Minute),
	}
	f.messages.staffReplied = true

	outcome := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))

	if outcome.Action != domain.TicketCreated {
		t.Fatalf("action = %q, want %q after staff reply", outcome.Action, domain.TicketCreated)
	}
	if len(f.cases.appended) != 0 {
		t.Errorf("grouped into case %v despite staff reply", f.cases.appended)
	}
}

func TestEvaluateSkipsTerminalRecentCase(t *testing.T) {
	f := newFixture()
	f.cases.recent = &domain.Case{
		ID:        11,
		Status:    domain.CaseStatusResolved,
		CreatedAt: time.Now().Add(-3 * time.Minute),
	}

	outcome := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))

	if outcome.Action != domain.TicketCreated {
		t.Fatalf("action = %q, want %q for a resolved recent case", outcome.Action, domain.TicketCreated)
	}
}

func TestEvaluateFailedOutcomeOnPersistenceError(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *triageFixture)
	}{
		{"recent case lookup fails", func(f *triageFixture) {
			f.cases.recentErr = errors.New("db down")
		}},
		{"staff reply lookup fails", func(f *triageFixture) {
			f.cases.recent = &domain.Case{ID: 11, Status: domain.CaseStatusOpen, CreatedAt: time.Now()}
			f.messages.staffErr = errors.New("db down")
		}},
		{"case insert fails", func(f *triageFixture) {
			f.cases.createErr = errors.New("db down")
		}},
		{"message link fails", func(f *triageFixture) {
			f.messages.linkErr = errors.New("db down")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			outcome := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))

			if outcome.Action != domain.TicketFailed {
				t.Fatalf("action = %q, want %q", outcome.Action, domain.TicketFailed)
			}
			if outcome.Reason == "" {
				t.Errorf("failed outcome carries no reason")
			}
		})
	}
}

func TestEvaluateProceedsWhenLockUnavailable(t *testing.T) {
	f := newFixture()
	f.locker.err = errors.New("redis down")

	outcome := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))

	if outcome.Action != domain.TicketCreated {
		t.Fatalf("action = %q, want %q when the lock backend is down", outcome.Action, domain.TicketCreated)
	}
	if f.locker.released != 0 {
		t.Errorf("released a lock that was never acquired")
	}
}

func TestEvaluateWaitsOutLockHolder(t *testing.T) {
	f := newFixture()
	f.locker.denials = 2

	outcome := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))

	if outcome.Action != domain.TicketCreated {
		t.Fatalf("action = %q, want %q", outcome.Action, domain.TicketCreated)
	}
	if f.locker.acquired != 3 {
		t.Errorf("acquire attempts = %d, want 3 (two denials, then granted)", f.locker.acquired)
	}
	if f.locker.released != 1 {
		t.Errorf("released = %d, want 1", f.locker.released)
	}
}

func TestEvaluateLockContentionProducesOneCase(t *testing.T) {
	// A permanently held lock models the worst case: the holder never
	// yields within the retry budget. The second message must then find
	// the case the holder committed and group into it, not open a second.
	f := newFixture()
	f.locker.denied = true

	first := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))
	if first.Action != domain.TicketCreated {
		t.Fatalf("first action = %q, want %q", first.Action, domain.TicketCreated)
	}
	f.cases.recent = f.cases.created[0]

	second := f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))
	if second.Action != domain.TicketGrouped {
		t.Fatalf("second action = %q, want %q", second.Action, domain.TicketGrouped)
	}
	if second.CaseID != first.CaseID {
		t.Errorf("second message went to case %d, first to %d", second.CaseID, first.CaseID)
	}
	if len(f.cases.created) != 1 {
		t.Errorf("created %d cases, want 1", len(f.cases.created))
	}
	if f.locker.released != 0 {
		t.Errorf("released a lock that was never acquired")
	}
}

func TestEvaluateAwaitingReplyFlag(t *testing.T) {
	t.Run("client message needing response sets the flag", func(t *testing.T) {
		f := newFixture()
		f.eval.Evaluate(context.Background(), clientMessage(), problemResult(3))
		if len(f.channels.awaitingSet) != 1 || !f.channels.awaitingSet[0] {
			t.Errorf("awaiting-reply updates = %v, want [true]", f.channels.awaitingSet)
		}
	})

	t.Run("no response needed clears the flag", func(t *testing.T) {
		f := newFixture()
		result := problemResult(3)
		result.NeedsResponse = false
		f.eval.Evaluate(context.Background(), clientMessage(), result)
		if len(f.channels.awaitingSet) != 1 || f.channels.awaitingSet[0] {
			t.Errorf("awaiting-reply updates = %v, want [false]", f.channels.awaitingSet)
		}
	})

	t.Run("staff message needing response leaves the flag alone", func(t *testing.T) {
		f := newFixture()
		msg := clientMessage()
		msg.Role = domain.RoleSupport
		f.eval.Evaluate(context.Background(), msg, problemResult(3))
		if len(f.channels.awaitingSet) != 0 {
			t.Errorf("awaiting-reply updates = %v, want none", f.channels.awaitingSet)
		}
	})
}

func TestEvaluateChannelEscalation(t *testing.T) {
	tests := []struct {
		name    string
		urgency int
		want    []domain.CasePriority
	}{
		{"urgency 2 does not escalate", 2, nil},
		{"urgency 3 escalates to high", 3, []domain.CasePriority{domain.PriorityHigh}},
		{"urgency 4 escalates to urgent", 4, []domain.CasePriority{domain.PriorityUrgent}},
		{"urgency 5 escalates to urgent", 5, []domain.CasePriority{domain.PriorityUrgent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.eval.Evaluate(context.Background(), clientMessage(), problemResult(tt.urgency))
			if len(f.channels.raisedTo) != len(tt.want) {
				t.Fatalf("escalations = %v, want %v", f.channels.raisedTo, tt.want)
			}
			for i := range tt.want {
				if f.channels.raisedTo[i] != tt.want[i] {
					t.Errorf("escalation[%d] = %q, want %q", i, f.channels.raisedTo[i], tt.want[i])
				}
			}
		})
	}
}

func TestEvaluateNonProblemNeverEscalates(t *testing.T) {
	f := newFixture()
	result := problemResult(5)
	result.IsProblem = false
	f.eval.Evaluate(context.Background(), clientMessage(), result)
	if len(f.channels.raisedTo) != 0 {
		t.Errorf("escalated channel for a non-problem message: %v", f.channels.raisedTo)
	}
}

func TestEvaluateAutoReply(t *testing.T) {
	greeting := func() *domain.ClassificationResult {
		return &domain.ClassificationResult{
			Category:         domain.CategoryGeneral,
			Sentiment:        domain.SentimentNeutral,
			Intent:           domain.IntentGreeting,
			NeedsResponse:    true,
			AutoReplyAllowed: true,
			Language:         domain.LangUzLatin,
		}
	}

	t.Run("client greeting gets the reply in its language", func(t *testing.T) {
		f := newFixture()
		f.eval.Evaluate(context.Background(), clientMessage(), greeting())
		if len(f.replies.sent) != 1 {
			t.Fatalf("sent %d replies, want 1", len(f.replies.sent))
		}
		want, _ := AutoReplyText(domain.IntentGreeting, domain.LangUzLatin)
		if f.replies.sent[0] != want {
			t.Errorf("reply = %q, want %q", f.replies.sent[0], want)
		}
	})

	t.Run("staff sender suppresses the reply", func(t *testing.T) {
		f := newFixture()
		msg := clientMessage()
		msg.Role = domain.RoleSupport
		f.eval.Evaluate(context.Background(), msg, greeting())
		if len(f.replies.sent) != 0 {
			t.Errorf("auto-replied to a staff message")
		}
	})

	t.Run("classifier veto suppresses the reply", func(t *testing.T) {
		f := newFixture()
		result := greeting()
		result.AutoReplyAllowed = false
		f.eval.Evaluate(context.Background(), clientMessage(), result)
		if len(f.replies.sent) != 0 {
			t.Errorf("auto-replied despite AutoReplyAllowed=false")
		}
	})

	t.Run("nil sender disables replies", func(t *testing.T) {
		f := newFixture()
		f.eval = NewEvaluator(f.messages, f.cases, f.channels, f.locker, nil)
		outcome := f.eval.Evaluate(context.Background(), clientMessage(), greeting())
		if outcome == nil {
			t.Fatal("outcome is nil")
		}
	})

	t.Run("send failure does not affect the outcome", func(t *testing.T) {
		f := newFixture()
		f.replies.err = errors.New("telegram down")
		outcome := f.eval.Evaluate(context.Background(), clientMessage(), greeting())
		if outcome.Action != domain.TicketNotNeeded {
			t.Errorf("action = %q, want %q", outcome.Action, domain.TicketNotNeeded)
		}
	})
}

func TestAutoReplyTextFallsBackToRussian(t *testing.T) {
	text, ok := AutoReplyText(domain.IntentGratitude, domain.LangMixed)
	if !ok {
		t.Fatal("gratitude has no template")
	}
	ru, _ := AutoReplyText(domain.IntentGratitude, domain.LangRussian)
	if text != ru {
		t.Errorf("mixed-language reply = %q, want the Russian fallback %q", text, ru)
	}

	if _, ok := AutoReplyText(domain.IntentReportProblem, domain.LangRussian); ok {
		t.Error("report_problem unexpectedly has an auto-reply template")
	}
}

func TestCaseTitle(t *testing.T) {
	long := make([]rune, 0, 200)
	for i := 0; i < 200; i++ {
		long = append(long, 'ж')
	}

	tests := []struct {
		name   string
		result *domain.ClassificationResult
		want   string
	}{
		{"summary used as-is", &domain.ClassificationResult{Summary: "Не приходит смс-код", Category: domain.CategoryTechnical}, "Не приходит смс-код"},
		{"whitespace summary falls back to category", &domain.ClassificationResult{Summary: "   ", Category: domain.CategoryBilling}, "billing"},
		{"long summary truncated by runes", &domain.ClassificationResult{Summary: string(long)}, string(long[:120])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := caseTitle(tt.result); got != tt.want {
				t.Errorf("caseTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
