package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"clinicvoice/config"
	"clinicvoice/handlers"
	"clinicvoice/utils"
)

// RegisterVoiceRoutes registers the dialogue endpoints.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/voice")
	{
		api.POST("/turn", hb.ProcessTurnHandler)
		api.GET("/ws", hb.VoiceStreamHandler)
		api.DELETE("/session/:sessionID", hb.EndSessionHandler)
	}
}

// RegisterAppointmentRoutes registers the direct booking endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.POST("/book", hb.BookAppointmentHandler)
	}
}

// RegisterInsuranceRoutes registers the eligibility endpoints.
func RegisterInsuranceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/insurance")
	{
		api.POST("/verify", hb.VerifyInsuranceHandler)
	}
}

// RegisterClinicRoutes registers the clinic catalog endpoints.
func RegisterClinicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/clinic")
	{
		api.GET("/info", hb.ClinicInfoHandler)
		api.GET("/doctors/:doctor/availability", hb.DoctorAvailabilityHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Hi, I'm " + config.AppConfig.ClinicName,
			"deps":    utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterVoiceRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterInsuranceRoutes(r, hb)
	RegisterClinicRoutes(r, hb)
	RegisterHealthRoute(r)
}
