package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	appointmentRepo "clinicvoice/database/repository/appointment"
	clinicRepo "clinicvoice/database/repository/clinic"
	turnlogRepo "clinicvoice/database/repository/turnlog"
	"clinicvoice/models"
	"clinicvoice/services/actions"
)

type fakeTranscriber struct {
	mu      sync.Mutex
	replies []string
	err     error
	// gate, when set, blocks each call until it receives. Used to prove
	// same-session turns are serialized.
	gate chan struct{}
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return "", nil
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	return next, nil
}

type fakeSynthesizer struct {
	err   error
	calls int
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

// scriptedRouter returns canned classifications in order.
type scriptedRouter struct {
	mu    sync.Mutex
	steps []routeStep
}

type routeStep struct {
	intent models.Intent
	slots  map[string]string
	err    error
}

func (r *scriptedRouter) Route(_ context.Context, _ string, pendingIntent models.Intent, _ map[string]string) (models.Intent, map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.steps) == 0 {
		return models.IntentUnknown, nil, nil
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	if step.err != nil {
		return models.IntentUnknown, nil, step.err
	}
	in := step.intent
	if in == models.IntentUnknown && pendingIntent != "" {
		in = pendingIntent
	}
	return in, step.slots, nil
}

type memoryTurnLog struct {
	mu      sync.Mutex
	entries []turnlogRepo.Entry
}

func (l *memoryTurnLog) LogTurn(_ context.Context, e turnlogRepo.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func testOrchestrator(t *testing.T, tr *fakeTranscriber, router *scriptedRouter) (*Orchestrator, *appointmentRepo.MemoryRepo) {
	t.Helper()
	repo := appointmentRepo.NewMemoryRepo()
	logger := zap.NewNop()
	registry := NewRegistry(10*time.Minute, logger)
	t.Cleanup(registry.Shutdown)

	orc := &Orchestrator{
		Registry:    registry,
		Transcriber: tr,
		Synthesizer: &fakeSynthesizer{},
		Router:      router,
		Handlers: map[models.Intent]actions.Handler{
			models.IntentBookAppointment: actions.NewBookingHandler(repo, nil, logger),
			models.IntentVerifyInsurance: actions.NewInsuranceHandler(clinicRepo.NewMemoryRepo(), nil, time.Minute, logger),
			models.IntentClinicFAQ:       actions.NewFAQHandler(clinicRepo.NewMemoryRepo()),
		},
		TurnLog: &memoryTurnLog{},
		Logger:  logger,
	}
	return orc, repo
}

func TestBookingFlowWithClarification(t *testing.T) {
	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentBookAppointment, slots: map[string]string{
			"patient_name": "John Smith", "doctor": "Dr. Smith",
		}},
		{intent: models.IntentBookAppointment, slots: map[string]string{
			"date": day, "time": "10:00",
		}},
	}}
	tr := &fakeTranscriber{replies: []string{
		"I'd like to see Dr. Smith, this is John Smith",
		"next week at ten",
	}}
	orc, repo := testOrchestrator(t, tr, router)
	ctx := context.Background()

	first, err := orc.HandleTurn(ctx, "s1", []byte("wav"))
	if err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	if first.SessionStatus != models.SessionAwaitingClarification {
		t.Fatalf("expected clarification, got %s", first.SessionStatus)
	}
	if !strings.Contains(first.ResponseText, "date") {
		t.Fatalf("expected a date question, got %q", first.ResponseText)
	}

	second, err := orc.HandleTurn(ctx, "s1", []byte("wav"))
	if err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	if second.SessionStatus != models.SessionCompleted {
		t.Fatalf("expected completed session, got %s", second.SessionStatus)
	}
	if !strings.Contains(second.ResponseText, "Dr. Smith") {
		t.Fatalf("confirmation missing doctor: %q", second.ResponseText)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one booking, got %d", repo.Count())
	}
}

func TestPendingSlotsSurviveOffTopicTurn(t *testing.T) {
	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentBookAppointment, slots: map[string]string{
			"patient_name": "Ana Lee", "doctor": "Dr. Brown", "date": day,
		}},
		// Bare answer classifies UNKNOWN; scriptedRouter applies the sticky
		// pending intent the way the real router does.
		{intent: models.IntentUnknown, slots: map[string]string{"time": "14:00"}},
	}}
	tr := &fakeTranscriber{replies: []string{"book me with doctor brown", "two pm"}}
	orc, repo := testOrchestrator(t, tr, router)
	ctx := context.Background()

	if _, err := orc.HandleTurn(ctx, "s2", []byte("wav")); err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	result, err := orc.HandleTurn(ctx, "s2", []byte("wav"))
	if err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	if result.SessionStatus != models.SessionCompleted {
		t.Fatalf("expected completed, got %s: %q", result.SessionStatus, result.ResponseText)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one booking, got %d", repo.Count())
	}
}

func TestTranscriptionFailureIsRecoverable(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("stt down")}
	orc, _ := testOrchestrator(t, tr, &scriptedRouter{})
	ctx := context.Background()

	result, err := orc.HandleTurn(ctx, "s3", []byte("wav"))
	if err != nil {
		t.Fatalf("turn must not error on transcription failure: %v", err)
	}
	if result.ResponseText != transcriptionApology {
		t.Fatalf("expected fixed apology, got %q", result.ResponseText)
	}
	if result.SessionStatus != models.SessionActive {
		t.Fatalf("session must stay usable, got %s", result.SessionStatus)
	}

	// The failed turn is still committed to history.
	s, release := orc.Registry.Acquire("s3")
	defer release()
	if len(s.Turns) != 1 || !s.Turns[0].Failed {
		t.Fatalf("expected one failed turn, got %+v", s.Turns)
	}
}

func TestRouterFailureKeepsPendingState(t *testing.T) {
	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentBookAppointment, slots: map[string]string{
			"patient_name": "John Smith", "doctor": "Dr. Smith", "date": day,
		}},
		{err: errors.New("llm down")},
		{intent: models.IntentUnknown, slots: map[string]string{"time": "11:00"}},
	}}
	tr := &fakeTranscriber{replies: []string{"book dr smith", "eleven", "eleven"}}
	orc, repo := testOrchestrator(t, tr, router)
	ctx := context.Background()

	if _, err := orc.HandleTurn(ctx, "s4", []byte("wav")); err != nil {
		t.Fatal(err)
	}
	failed, err := orc.HandleTurn(ctx, "s4", []byte("wav"))
	if err != nil {
		t.Fatalf("turn must not error on router failure: %v", err)
	}
	if failed.ResponseText != systemApology {
		t.Fatalf("expected apology, got %q", failed.ResponseText)
	}

	// Repeating the answer completes the booking with the earlier slots.
	final, err := orc.HandleTurn(ctx, "s4", []byte("wav"))
	if err != nil {
		t.Fatal(err)
	}
	if final.SessionStatus != models.SessionCompleted {
		t.Fatalf("expected completion after retry, got %s: %q", final.SessionStatus, final.ResponseText)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one booking, got %d", repo.Count())
	}
}

func TestSynthesisFailureStillReturnsText(t *testing.T) {
	tr := &fakeTranscriber{replies: []string{"what are your hours"}}
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentClinicFAQ, slots: map[string]string{"topic": "hours"}},
	}}
	orc, _ := testOrchestrator(t, tr, router)
	orc.Synthesizer = &fakeSynthesizer{err: errors.New("tts down")}

	result, err := orc.HandleTurn(context.Background(), "s5", []byte("wav"))
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if !result.SynthesisFailed {
		t.Fatal("expected synthesisFailed flag")
	}
	if result.ResponseText == "" {
		t.Fatal("text response must stand alone when synthesis fails")
	}
	if len(result.Audio) != 0 {
		t.Fatal("expected no audio on synthesis failure")
	}
}

// stallingHandler hangs in Execute until its context is cancelled, standing in
// for a storage backend that stops responding mid-turn.
type stallingHandler struct{}

func (stallingHandler) Intent() models.Intent            { return models.IntentClinicFAQ }
func (stallingHandler) Validate(map[string]string) error { return nil }
func (stallingHandler) Execute(ctx context.Context, _ map[string]string, _ string) (*actions.Outcome, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestHungActionIsBoundedByStorageTimeout(t *testing.T) {
	tr := &fakeTranscriber{replies: []string{"what are your hours"}}
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentClinicFAQ, slots: map[string]string{"topic": "hours"}},
	}}
	orc, _ := testOrchestrator(t, tr, router)
	orc.Handlers[models.IntentClinicFAQ] = stallingHandler{}
	orc.Timeouts.Storage = 50 * time.Millisecond

	done := make(chan *models.TurnResult, 1)
	go func() {
		result, err := orc.HandleTurn(context.Background(), "s11", []byte("wav"))
		if err != nil {
			t.Errorf("turn must not error on a hung action: %v", err)
		}
		done <- result
	}()

	var result *models.TurnResult
	select {
	case result = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("turn never returned; hung action was not cut off")
	}
	if result.ResponseText != systemApology {
		t.Fatalf("expected apology after timeout, got %q", result.ResponseText)
	}

	s, release := orc.Registry.Acquire("s11")
	defer release()
	if len(s.Turns) != 1 || !s.Turns[0].Failed {
		t.Fatalf("expected one failed turn, got %+v", s.Turns)
	}
}

func TestUnknownIntentPrompt(t *testing.T) {
	tr := &fakeTranscriber{replies: []string{"the weather is nice"}}
	orc, _ := testOrchestrator(t, tr, &scriptedRouter{})

	result, err := orc.HandleTurn(context.Background(), "s6", []byte("wav"))
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if result.ResponseText != unknownIntentPrompt {
		t.Fatalf("expected capability prompt, got %q", result.ResponseText)
	}
	if result.SessionStatus != models.SessionActive {
		t.Fatalf("unexpected status %s", result.SessionStatus)
	}
}

func TestSameSessionTurnsAreSerialized(t *testing.T) {
	gate := make(chan struct{})
	tr := &fakeTranscriber{gate: gate, replies: []string{"hello", "hello"}}
	orc, _ := testOrchestrator(t, tr, &scriptedRouter{})
	ctx := context.Background()

	done := make(chan int, 2)
	go func() {
		orc.HandleTurn(ctx, "s7", []byte("wav"))
		done <- 1
	}()
	go func() {
		orc.HandleTurn(ctx, "s7", []byte("wav"))
		done <- 2
	}()

	// Release one transcription; exactly one turn can finish because the
	// other is parked on the session lock, not inside the transcriber.
	gate <- struct{}{}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first turn never finished")
	}
	select {
	case <-done:
		t.Fatal("second turn finished without its transcription being released")
	case <-time.After(50 * time.Millisecond):
	}

	gate <- struct{}{}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second turn never finished")
	}

	s, release := orc.Registry.Acquire("s7")
	defer release()
	if len(s.Turns) != 2 || s.Turns[0].Seq != 0 || s.Turns[1].Seq != 1 {
		t.Fatalf("turn ordering broken: %+v", s.Turns)
	}
}

func TestTurnsAreAuditLogged(t *testing.T) {
	tr := &fakeTranscriber{replies: []string{"what are your hours"}}
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentClinicFAQ, slots: map[string]string{"topic": "hours"}},
	}}
	orc, _ := testOrchestrator(t, tr, router)
	log := orc.TurnLog.(*memoryTurnLog)

	if _, err := orc.HandleTurn(context.Background(), "s8", []byte("wav")); err != nil {
		t.Fatal(err)
	}
	if len(log.entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(log.entries))
	}
	if log.entries[0].SessionID != "s8" || log.entries[0].Intent != models.IntentClinicFAQ {
		t.Fatalf("unexpected log entry: %+v", log.entries[0])
	}
}

func TestHandleTextBypassesTranscription(t *testing.T) {
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentClinicFAQ, slots: map[string]string{"topic": "location"}},
	}}
	orc, _ := testOrchestrator(t, &fakeTranscriber{err: errors.New("unused")}, router)

	result, err := orc.HandleText(context.Background(), "s9", "where are you")
	if err != nil {
		t.Fatalf("text turn failed: %v", err)
	}
	if !strings.Contains(result.ResponseText, "123 Healthcare Ave") {
		t.Fatalf("expected location answer, got %q", result.ResponseText)
	}
}

func TestCompletedSessionAcceptsNewConversation(t *testing.T) {
	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	router := &scriptedRouter{steps: []routeStep{
		{intent: models.IntentBookAppointment, slots: map[string]string{
			"patient_name": "John Smith", "doctor": "Dr. Smith", "date": day, "time": "10:00",
		}},
		{intent: models.IntentClinicFAQ, slots: map[string]string{"topic": "hours"}},
	}}
	tr := &fakeTranscriber{replies: []string{"book it all", "what are your hours"}}
	orc, _ := testOrchestrator(t, tr, router)
	ctx := context.Background()

	booked, err := orc.HandleTurn(ctx, "s10", []byte("wav"))
	if err != nil {
		t.Fatal(err)
	}
	if booked.SessionStatus != models.SessionCompleted {
		t.Fatalf("expected completion, got %s: %q", booked.SessionStatus, booked.ResponseText)
	}

	followup, err := orc.HandleTurn(ctx, "s10", []byte("wav"))
	if err != nil {
		t.Fatal(err)
	}
	if followup.SessionStatus != models.SessionActive {
		t.Fatalf("completed session must accept new turns, got %s", followup.SessionStatus)
	}
	if !strings.Contains(followup.ResponseText, "Monday") {
		t.Fatalf("expected hours answer, got %q", followup.ResponseText)
	}
}
