package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clinicvoice/models"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The REST layer already enforces CORS; the socket accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsTextFrame is an inbound text frame carrying an already-transcribed
// utterance or a control verb.
type wsTextFrame struct {
	Type string `json:"type"` // "text" or "end"
	Text string `json:"text,omitempty"`
}

// VoiceStreamHandler runs the dialogue loop over a websocket. Binary frames
// carry one complete WAV utterance each; the reply is a JSON result frame
// followed by a binary MP3 frame when synthesis succeeded. Turns are
// processed strictly in arrival order per connection.
func (h *VoiceHandler) VoiceStreamHandler(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	hello, _ := json.Marshal(gin.H{"type": "session", "sessionId": sessionID})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("websocket read failed", zap.String("sessionId", sessionID), zap.Error(err))
			}
			return
		}

		// Turns run on a detached context: a disconnect mid-turn must not
		// abort a booking already in flight. Results are simply discarded.
		turnCtx := context.Background()

		switch msgType {
		case websocket.BinaryMessage:
			result, err := h.Orchestrator.HandleTurn(turnCtx, sessionID, payload)
			if err != nil {
				h.writeError(conn, "failed to process turn")
				continue
			}
			h.writeResult(conn, result)

		case websocket.TextMessage:
			var frame wsTextFrame
			if err := json.Unmarshal(payload, &frame); err != nil {
				h.writeError(conn, "invalid text frame")
				continue
			}
			if frame.Type == "end" {
				h.Orchestrator.EndSession(sessionID)
				bye, _ := json.Marshal(gin.H{"type": "session", "sessionId": sessionID, "status": "EXPIRED"})
				conn.WriteMessage(websocket.TextMessage, bye)
				return
			}
			result, err := h.Orchestrator.HandleText(turnCtx, sessionID, frame.Text)
			if err != nil {
				h.writeError(conn, "failed to process turn")
				continue
			}
			h.writeResult(conn, result)
		}
	}
}

func (h *VoiceHandler) writeResult(conn *websocket.Conn, result *models.TurnResult) {
	frame, err := json.Marshal(gin.H{
		"type":            "turn",
		"sessionId":       result.SessionID,
		"transcript":      result.Transcript,
		"intent":          result.Intent,
		"response":        result.ResponseText,
		"status":          result.SessionStatus,
		"synthesisFailed": result.SynthesisFailed,
		"hasAudio":        len(result.Audio) > 0,
	})
	if err != nil {
		h.writeError(conn, "failed to encode turn result")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return
	}
	if len(result.Audio) > 0 {
		conn.WriteMessage(websocket.BinaryMessage, result.Audio)
	}
}

func (h *VoiceHandler) writeError(conn *websocket.Conn, msg string) {
	frame, _ := json.Marshal(gin.H{"type": "error", "error": msg})
	conn.WriteMessage(websocket.TextMessage, frame)
}
