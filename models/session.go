package models

import "time"

// SessionStatus is the lifecycle state of a dialogue session.
type SessionStatus string

const (
	SessionActive                SessionStatus = "ACTIVE"
	SessionAwaitingClarification SessionStatus = "AWAITING_CLARIFICATION"
	SessionCompleted             SessionStatus = "COMPLETED"
	SessionExpired               SessionStatus = "EXPIRED"
)

// Turn is one committed utterance-in/response-out exchange. Immutable once
// appended to a session's history.
type Turn struct {
	Seq        int               `json:"seq"`
	Transcript string            `json:"transcript"`
	Intent     Intent            `json:"intent"`
	Slots      map[string]string `json:"slots,omitempty"`
	Outcome    string            `json:"outcome,omitempty"`
	Response   string            `json:"response"`
	Failed     bool              `json:"failed,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Session holds per-conversation state across turns. Access is serialized by
// the session registry; nothing here is safe for concurrent use on its own.
type Session struct {
	ID            string            `json:"id"`
	Status        SessionStatus     `json:"status"`
	Turns         []Turn            `json:"turns"`
	PendingIntent Intent            `json:"pendingIntent,omitempty"`
	PendingSlots  map[string]string `json:"pendingSlots,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastActive    time.Time         `json:"lastActive"`
}

// NewSession returns a fresh ACTIVE session for the given token.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Status:       SessionActive,
		PendingSlots: make(map[string]string),
		CreatedAt:    now,
		LastActive:   now,
	}
}
