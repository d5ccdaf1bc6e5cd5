package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinicvoice/services/conversation"
	"clinicvoice/services/voice"
)

const AllowedAudioExtension = ".wav"

// VoiceHandler exposes the dialogue loop over HTTP.
type VoiceHandler struct {
	Orchestrator *conversation.Orchestrator
	Logger       *zap.Logger
}

func NewVoiceHandler(orc *conversation.Orchestrator, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{Orchestrator: orc, Logger: logger}
}

// ProcessTurnHandler takes one WAV utterance as multipart form data and
// returns the turn result. The synthesized reply rides along base64-encoded;
// it is absent when synthesis fails, and the text response stands alone.
func (h *VoiceHandler) ProcessTurnHandler(c *gin.Context) {
	sessionID := c.DefaultPostForm("session_id", "")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required", "details": err.Error()})
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != AllowedAudioExtension {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid file type",
			"details": fmt.Sprintf("expected %s, got %s", AllowedAudioExtension, ext),
		})
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, voice.MaxAudioBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audio file", "details": err.Error()})
		return
	}
	if len(audio) > voice.MaxAudioBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file too large"})
		return
	}

	result, err := h.Orchestrator.HandleTurn(c.Request.Context(), sessionID, audio)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process turn", "details": err.Error()})
		return
	}

	resp := gin.H{
		"sessionId":  result.SessionID,
		"transcript": result.Transcript,
		"intent":     result.Intent,
		"response":   result.ResponseText,
		"status":     result.SessionStatus,
	}
	if result.SynthesisFailed {
		resp["synthesisFailed"] = true
	}
	if len(result.Audio) > 0 {
		resp["audioBase64"] = base64.StdEncoding.EncodeToString(result.Audio)
		resp["audioMimeType"] = "audio/mpeg"
	}
	c.JSON(http.StatusOK, resp)
}

// EndSessionHandler closes a dialogue session explicitly.
func (h *VoiceHandler) EndSessionHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}
	h.Orchestrator.EndSession(sessionID)
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "status": "EXPIRED"})
}
