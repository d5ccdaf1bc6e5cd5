package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	turnlogRepo "clinicvoice/database/repository/turnlog"
	"clinicvoice/models"
	"clinicvoice/services/actions"
	"clinicvoice/services/intent"
	"clinicvoice/services/voice"
)

// Timeouts bounds each upstream call a turn makes. A zero duration means no
// bound beyond the caller's context.
type Timeouts struct {
	Transcription time.Duration
	Generation    time.Duration
	Synthesis     time.Duration
	Storage       time.Duration
}

// Orchestrator drives the full voice turn pipeline: audio to transcript,
// transcript to intent and slots, slots to clarification or domain action,
// answer to speech. One instance serves all sessions; per-session ordering
// comes from the registry lock held for the whole turn.
type Orchestrator struct {
	Registry    *Registry
	Transcriber voice.Transcriber
	Synthesizer voice.Synthesizer
	Router      intent.Router
	Handlers    map[models.Intent]actions.Handler
	TurnLog     turnlogRepo.Repository
	Logger      *zap.Logger
	Language    string
	Timeouts    Timeouts
}

// turnOutcome is the resolved content of one turn before it is committed.
type turnOutcome struct {
	intent   models.Intent
	slots    map[string]string
	outcome  string
	response string
	failed   bool
}

// HandleTurn processes one audio utterance for the session. A transcription
// failure yields the fixed apology as a committed failed turn; it never
// surfaces as an error to the caller.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, audio []byte) (*models.TurnResult, error) {
	session, release := o.Registry.Acquire(sessionID)
	defer release()

	transcript, err := o.transcribe(ctx, audio)
	if err != nil {
		o.Logger.Warn("transcription failed",
			zap.String("sessionId", sessionID),
			zap.Error(&UpstreamServiceError{Stage: StageTranscription, Err: err}))
		return o.commit(ctx, session, turnOutcome{
			intent:   models.IntentUnknown,
			response: transcriptionApology,
			failed:   true,
		}, "")
	}
	return o.runTurn(ctx, session, transcript)
}

// HandleText processes one already-transcribed utterance, used by websocket
// text frames and by callers that bring their own speech front end.
func (o *Orchestrator) HandleText(ctx context.Context, sessionID, text string) (*models.TurnResult, error) {
	session, release := o.Registry.Acquire(sessionID)
	defer release()
	return o.runTurn(ctx, session, text)
}

// Dispatch validates and executes a domain action directly, bypassing the
// dialogue loop. Backs the non-voice REST endpoints.
func (o *Orchestrator) Dispatch(ctx context.Context, in models.Intent, slots map[string]string, idemKey string) (*actions.Outcome, error) {
	handler, ok := o.Handlers[in]
	if !ok {
		return nil, fmt.Errorf("no handler for intent %s", in)
	}
	if err := handler.Validate(slots); err != nil {
		return nil, err
	}
	return handler.Execute(ctx, slots, idemKey)
}

// EndSession closes a dialogue session explicitly.
func (o *Orchestrator) EndSession(sessionID string) {
	o.Registry.Close(sessionID)
}

func (o *Orchestrator) runTurn(ctx context.Context, session *models.Session, transcript string) (*models.TurnResult, error) {
	// A completed session accepts further turns as a fresh conversation.
	if session.Status == models.SessionCompleted {
		session.Status = models.SessionActive
		session.PendingIntent = ""
		session.PendingSlots = make(map[string]string)
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return o.commit(ctx, session, turnOutcome{
			intent:   models.IntentUnknown,
			response: transcriptionApology,
			failed:   true,
		}, "")
	}

	out := o.resolve(ctx, session, transcript)
	return o.commit(ctx, session, out, transcript)
}

// resolve routes the transcript and advances the slot-filling state machine,
// mutating the session's pending state and status. It never returns an
// error: every failure mode maps to a spoken response.
func (o *Orchestrator) resolve(ctx context.Context, session *models.Session, transcript string) turnOutcome {
	routeCtx, cancel := o.bound(ctx, o.Timeouts.Generation)
	defer cancel()

	detected, extracted, err := o.Router.Route(routeCtx, transcript, session.PendingIntent, session.PendingSlots)
	if err != nil {
		o.Logger.Error("intent routing failed",
			zap.String("sessionId", session.ID),
			zap.Error(&UpstreamServiceError{Stage: StageGeneration, Err: err}))
		// Pending state is left intact so the caller can simply repeat.
		return turnOutcome{intent: models.IntentUnknown, response: systemApology, failed: true}
	}

	if detected == models.IntentUnknown {
		session.Status = models.SessionActive
		return turnOutcome{intent: models.IntentUnknown, response: unknownIntentPrompt}
	}

	// An intent switch abandons the previous exchange and its slots.
	if session.PendingIntent != "" && session.PendingIntent != detected {
		session.PendingSlots = make(map[string]string)
	}
	slots := mergeSlots(session.PendingSlots, extracted)

	if missing := intent.MissingSlots(detected, slots); len(missing) > 0 {
		session.PendingIntent = detected
		session.PendingSlots = slots
		session.Status = models.SessionAwaitingClarification
		return turnOutcome{
			intent:   detected,
			slots:    copySlots(slots),
			outcome:  "clarification",
			response: clarificationFor(missing[0]),
		}
	}

	handler, ok := o.Handlers[detected]
	if !ok {
		o.Logger.Error("no handler registered", zap.String("intent", string(detected)))
		return turnOutcome{intent: detected, response: systemApology, failed: true}
	}

	if err := handler.Validate(slots); err != nil {
		var ve *actions.ValidationError
		if errors.As(err, &ve) {
			// Drop the bad value and ask for it again.
			delete(slots, ve.Slot)
			session.PendingIntent = detected
			session.PendingSlots = slots
			session.Status = models.SessionAwaitingClarification
			return turnOutcome{
				intent:   detected,
				slots:    copySlots(slots),
				outcome:  "clarification",
				response: clarificationFor(ve.Slot),
			}
		}
		o.Logger.Error("slot validation failed", zap.String("sessionId", session.ID), zap.Error(err))
		return turnOutcome{intent: detected, response: systemApology, failed: true}
	}

	// The key is stable for the turn being processed, so a handler retry
	// inside Execute cannot double-commit.
	idemKey := fmt.Sprintf("%s:%d", session.ID, len(session.Turns))
	execCtx, cancel := o.bound(ctx, o.Timeouts.Storage)
	result, err := handler.Execute(execCtx, slots, idemKey)
	cancel()
	if err != nil {
		o.Logger.Error("action execution failed",
			zap.String("sessionId", session.ID),
			zap.String("intent", string(detected)),
			zap.Error(&SystemError{Err: err}))
		// Collected slots survive so the caller can retry the same request.
		session.PendingIntent = detected
		session.PendingSlots = slots
		return turnOutcome{intent: detected, slots: copySlots(slots), response: systemApology, failed: true}
	}

	session.PendingIntent = ""
	session.PendingSlots = make(map[string]string)
	if result.Terminal {
		session.Status = models.SessionCompleted
	} else {
		session.Status = models.SessionActive
	}
	return turnOutcome{
		intent:   detected,
		slots:    copySlots(slots),
		outcome:  string(result.Kind),
		response: composeOutcome(detected, result),
	}
}

// commit synthesizes the response, appends the turn to the session history,
// and writes the audit log. Synthesis and logging are best-effort.
func (o *Orchestrator) commit(ctx context.Context, session *models.Session, out turnOutcome, transcript string) (*models.TurnResult, error) {
	audio, synthFailed := o.synthesize(ctx, out.response)

	now := time.Now().UTC()
	session.Turns = append(session.Turns, models.Turn{
		Seq:        len(session.Turns),
		Transcript: transcript,
		Intent:     out.intent,
		Slots:      out.slots,
		Outcome:    out.outcome,
		Response:   out.response,
		Failed:     out.failed,
		CreatedAt:  now,
	})

	if o.TurnLog != nil {
		logCtx, cancel := o.bound(context.Background(), o.Timeouts.Storage)
		if err := o.TurnLog.LogTurn(logCtx, turnlogRepo.Entry{
			SessionID:  session.ID,
			Transcript: transcript,
			Intent:     out.intent,
			Response:   out.response,
			Failed:     out.failed,
			Timestamp:  now,
		}); err != nil {
			o.Logger.Warn("turn log write failed",
				zap.String("sessionId", session.ID),
				zap.Error(&UpstreamServiceError{Stage: StageStorage, Err: err}))
		}
		cancel()
	}

	return &models.TurnResult{
		SessionID:       session.ID,
		Transcript:      transcript,
		Intent:          out.intent,
		ResponseText:    out.response,
		Audio:           audio,
		SynthesisFailed: synthFailed,
		SessionStatus:   session.Status,
	}, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, audio []byte) (string, error) {
	sttCtx, cancel := o.bound(ctx, o.Timeouts.Transcription)
	defer cancel()
	return o.Transcriber.Transcribe(sttCtx, audio, o.Language)
}

func (o *Orchestrator) synthesize(ctx context.Context, text string) ([]byte, bool) {
	if o.Synthesizer == nil {
		return nil, false
	}
	ttsCtx, cancel := o.bound(ctx, o.Timeouts.Synthesis)
	defer cancel()
	audio, err := o.Synthesizer.Synthesize(ttsCtx, text)
	if err != nil {
		o.Logger.Warn("synthesis failed, returning text only",
			zap.Error(&UpstreamServiceError{Stage: StageSynthesis, Err: err}))
		return nil, true
	}
	return audio, false
}

func (o *Orchestrator) bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func mergeSlots(pending, extracted map[string]string) map[string]string {
	merged := make(map[string]string, len(pending)+len(extracted))
	for k, v := range pending {
		merged[k] = v
	}
	for k, v := range extracted {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}

func copySlots(slots map[string]string) map[string]string {
	if len(slots) == 0 {
		return nil
	}
	cp := make(map[string]string, len(slots))
	for k, v := range slots {
		cp[k] = v
	}
	return cp
}
