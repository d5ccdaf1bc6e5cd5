package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appointmentRepo "clinicvoice/database/repository/appointment"
	clinicRepo "clinicvoice/database/repository/clinic"
	"clinicvoice/services/intent"
)

// ClinicHandler serves the clinic catalog and doctor availability.
type ClinicHandler struct {
	Clinic       clinicRepo.Repository
	Appointments appointmentRepo.Repository
	Logger       *zap.Logger
}

func NewClinicHandler(clinic clinicRepo.Repository, appts appointmentRepo.Repository, logger *zap.Logger) *ClinicHandler {
	return &ClinicHandler{Clinic: clinic, Appointments: appts, Logger: logger}
}

// ClinicInfoHandler returns the full clinic catalog.
func (h *ClinicHandler) ClinicInfoHandler(c *gin.Context) {
	info, err := h.Clinic.Info(c.Request.Context())
	if err != nil {
		h.Logger.Error("clinic info lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load clinic info"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// DoctorAvailabilityHandler lists free start times for a doctor on a day.
func (h *ClinicHandler) DoctorAvailabilityHandler(c *gin.Context) {
	doctor := intent.NormalizeDoctor(c.Param("doctor"))
	day := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date", "details": "expected YYYY-MM-DD"})
		return
	}

	free, err := h.Appointments.DoctorAvailability(c.Request.Context(), doctor, day)
	if err != nil {
		h.Logger.Error("availability lookup failed", zap.String("doctor", doctor), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctor": doctor, "date": day, "available": free})
}
