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

// InsuranceHandler exposes eligibility checks directly.
type InsuranceHandler struct {
	Orchestrator *conversation.Orchestrator
	Logger       *zap.Logger
}

func NewInsuranceHandler(orc *conversation.Orchestrator, logger *zap.Logger) *InsuranceHandler {
	return &InsuranceHandler{Orchestrator: orc, Logger: logger}
}

// VerifyInsuranceHandler answers a coverage question for one procedure.
func (h *InsuranceHandler) VerifyInsuranceHandler(c *gin.Context) {
	var input struct {
		PatientName       string `json:"patientName" binding:"required"`
		InsuranceProvider string `json:"insuranceProvider" binding:"required"`
		PolicyNumber      string `json:"policyNumber" binding:"required"`
		Procedure         string `json:"procedure" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	slots := map[string]string{
		"patient_name":       input.PatientName,
		"insurance_provider": input.InsuranceProvider,
		"policy_number":      input.PolicyNumber,
		"procedure":          input.Procedure,
	}

	out, err := h.Orchestrator.Dispatch(c.Request.Context(), models.IntentVerifyInsurance, slots, uuid.New().String())
	if err != nil {
		var ve *actions.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": ve.Error()})
			return
		}
		h.Logger.Error("insurance dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify insurance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verification": out.Verification})
}
