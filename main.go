package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"clinicvoice/config"
	"clinicvoice/cron"
	"clinicvoice/database"
	appointmentRepo "clinicvoice/database/repository/appointment"
	clinicRepo "clinicvoice/database/repository/clinic"
	turnlogRepo "clinicvoice/database/repository/turnlog"
	"clinicvoice/handlers"
	"clinicvoice/middleware"
	"clinicvoice/models"
	"clinicvoice/routes"
	"clinicvoice/services/actions"
	"clinicvoice/services/conversation"
	"clinicvoice/services/intent"
	"clinicvoice/services/notification"
	"clinicvoice/services/tasks"
	"clinicvoice/services/voice"
	"clinicvoice/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Google speech clients.
	ctx := context.Background()
	transcriber, err := voice.NewGoogleTranscriber(ctx, config.AppConfig.GoogleServiceAccountFile)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize transcriber: %v", err)
	}
	defer transcriber.Close()

	synthesizer, err := voice.NewGoogleSynthesizer(ctx,
		config.AppConfig.GoogleServiceAccountFile,
		config.AppConfig.TTSVoiceName,
		config.AppConfig.TTSLanguageCode,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize synthesizer: %v", err)
	}
	defer synthesizer.Close()

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	if indexed, ok := apptRepo.(*appointmentRepo.MongoAppointmentRepo); ok {
		if err := indexed.EnsureIndexes(); err != nil {
			logger.Sugar().Fatalf("main: failed to create appointment indexes: %v", err)
		}
	}
	clinicRepository := clinicRepo.NewMongoClinicRepo()
	turnLog := turnlogRepo.NewMongoTurnLogRepo()

	// Email queue: producer here, consumer worker in cron.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	mailer := notification.NewSendGridMailer(config.AppConfig.SendGridAPIKey, config.AppConfig.SendGridFromEmail)
	cron.InitEmailWorker(mailer)

	// Domain action handlers.
	bookingHandler := actions.NewBookingHandler(apptRepo, &tasks.AsynqEnqueuer{Client: asynqClient}, logger)
	insuranceHandler := actions.NewInsuranceHandler(
		clinicRepository,
		&actions.RedisVerificationCache{Client: utils.GetCacheClient(), Logger: logger},
		time.Duration(config.AppConfig.InsuranceCacheMins)*time.Minute,
		logger,
	)
	faqHandler := actions.NewFAQHandler(clinicRepository)

	// Conversation core.
	registry := conversation.NewRegistry(time.Duration(config.AppConfig.SessionIdleTTLMin)*time.Minute, logger)
	defer registry.Shutdown()

	orchestrator := &conversation.Orchestrator{
		Registry:    registry,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Router:      intent.NewDefaultRouter(intent.NewGeminiClient(config.AppConfig.GeminiAPIKey), logger),
		Handlers: map[models.Intent]actions.Handler{
			models.IntentBookAppointment: bookingHandler,
			models.IntentVerifyInsurance: insuranceHandler,
			models.IntentClinicFAQ:       faqHandler,
		},
		TurnLog:  turnLog,
		Logger:   logger,
		Language: config.AppConfig.TTSLanguageCode,
		Timeouts: conversation.Timeouts{
			Transcription: time.Duration(config.AppConfig.SttTimeoutSec) * time.Second,
			Generation:    time.Duration(config.AppConfig.LlmTimeoutSec) * time.Second,
			Synthesis:     time.Duration(config.AppConfig.TtsTimeoutSec) * time.Second,
			Storage:       time.Duration(config.AppConfig.StorageTimeoutSec) * time.Second,
		},
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	voiceHandler := handlers.NewVoiceHandler(orchestrator, logger)
	apptHandler := handlers.NewAppointmentHandler(orchestrator, logger)
	insHandler := handlers.NewInsuranceHandler(orchestrator, logger)
	clinicHandler := handlers.NewClinicHandler(clinicRepository, apptRepo, logger)

	handlerBundle := &handlers.HandlerBundle{
		ProcessTurnHandler: voiceHandler.ProcessTurnHandler,
		VoiceStreamHandler: voiceHandler.VoiceStreamHandler,
		EndSessionHandler:  voiceHandler.EndSessionHandler,

		BookAppointmentHandler: apptHandler.BookAppointmentHandler,
		VerifyInsuranceHandler: insHandler.VerifyInsuranceHandler,

		ClinicInfoHandler:         clinicHandler.ClinicInfoHandler,
		DoctorAvailabilityHandler: clinicHandler.DoctorAvailabilityHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
