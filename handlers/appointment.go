package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinicvoice/models"
	"clinicvoice/services/actions"
	"clinicvoice/services/conversation"
)

// AppointmentHandler exposes booking directly, bypassing the voice loop.
type AppointmentHandler struct {
	Orchestrator *conversation.Orchestrator
	Logger       *zap.Logger
}

func NewAppointmentHandler(orc *conversation.Orchestrator, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Orchestrator: orc, Logger: logger}
}

// BookAppointmentHandler reserves a slot. Retries with the same idempotency
// key return the original confirmation instead of double-booking.
func (h *AppointmentHandler) BookAppointmentHandler(c *gin.Context) {
	var input struct {
		PatientName    string `json:"patientName" binding:"required"`
		PatientEmail   string `json:"patientEmail"`
		Doctor         string `json:"doctor" binding:"required"`
		Date           string `json:"date" binding:"required"`
		Time           string `json:"time" binding:"required"`
		IdempotencyKey string `json:"idempotencyKey"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	idemKey := input.IdempotencyKey
	if idemKey == "" {
		idemKey = uuid.New().String()
	}
	slots := map[string]string{
		"patient_name":  input.PatientName,
		"patient_email": input.PatientEmail,
		"doctor":        input.Doctor,
		"date":          input.Date,
		"time":          input.Time,
	}

	out, err := h.Orchestrator.Dispatch(c.Request.Context(), models.IntentBookAppointment, slots, idemKey)
	if err != nil {
		var ve *actions.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": ve.Error()})
			return
		}
		h.Logger.Error("booking dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to book appointment"})
		return
	}

	if out.Kind == actions.OutcomeConflict {
		c.JSON(http.StatusConflict, gin.H{
			"error":        "slot already taken",
			"alternatives": out.Alternatives,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointment":    out.Appointment,
		"idempotencyKey": idemKey,
	})
}
