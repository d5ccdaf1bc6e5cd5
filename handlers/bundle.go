package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Voice endpoints
	ProcessTurnHandler gin.HandlerFunc
	VoiceStreamHandler gin.HandlerFunc
	EndSessionHandler  gin.HandlerFunc

	// Direct domain endpoints
	BookAppointmentHandler gin.HandlerFunc
	VerifyInsuranceHandler gin.HandlerFunc

	// Clinic catalog endpoints
	ClinicInfoHandler         gin.HandlerFunc
	DoctorAvailabilityHandler gin.HandlerFunc
}
