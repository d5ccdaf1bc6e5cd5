package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Google Cloud (speech-to-text / text-to-speech).
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	TTSVoiceName             string `mapstructure:"TTS_VOICE_NAME"`
	TTSLanguageCode          string `mapstructure:"TTS_LANGUAGE_CODE"`

	// Gemini (intent classification + slot extraction).
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// SendGrid (confirmation and reminder emails).
	SendGridAPIKey    string `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail string `mapstructure:"SENDGRID_FROM_EMAIL"`

	// Clinic identity, spoken in responses.
	ClinicName string `mapstructure:"CLINIC_NAME"`

	// Conversation tuning.
	SessionIdleTTLMin  int `mapstructure:"SESSION_IDLE_TTL_MIN"`
	SttTimeoutSec      int `mapstructure:"STT_TIMEOUT_SEC"`
	LlmTimeoutSec      int `mapstructure:"LLM_TIMEOUT_SEC"`
	TtsTimeoutSec      int `mapstructure:"TTS_TIMEOUT_SEC"`
	StorageTimeoutSec  int `mapstructure:"STORAGE_TIMEOUT_SEC"`
	InsuranceCacheMins int `mapstructure:"INSURANCE_CACHE_MINS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "clinicvoice")
	viper.SetDefault("TTS_VOICE_NAME", "en-US-Journey-F")
	viper.SetDefault("TTS_LANGUAGE_CODE", "en-US")
	viper.SetDefault("CLINIC_NAME", "Confido Health Clinic")
	viper.SetDefault("SESSION_IDLE_TTL_MIN", 10)
	viper.SetDefault("STT_TIMEOUT_SEC", 15)
	viper.SetDefault("LLM_TIMEOUT_SEC", 20)
	viper.SetDefault("TTS_TIMEOUT_SEC", 15)
	viper.SetDefault("STORAGE_TIMEOUT_SEC", 5)
	viper.SetDefault("INSURANCE_CACHE_MINS", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
