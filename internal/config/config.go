package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	MetricsPort   string
	Env           string
	LogLevel      string
	PublicBaseURL string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	AppointmentsTable string
	PatientsTable     string
	UsersTable        string

	DocumentBucket string
	AuditBucket    string

	AppointmentEventsQueueURL string
	EventPollInterval         time.Duration
	EventPollWaitSeconds      int

	SMSAPIKey             string
	SMSFromNumber         string
	SMSMessagingProfileID string

	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		MetricsPort:   getEnv("METRICS_PORT", "9091"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AppointmentsTable: getEnv("APPOINTMENTS_TABLE", "appointments"),
		PatientsTable:     getEnv("PATIENTS_TABLE", "patients"),
		UsersTable:        getEnv("USERS_TABLE", "users"),

		DocumentBucket: getEnv("DOCUMENT_BUCKET", "patient-documents"),
		AuditBucket:    getEnv("AUDIT_BUCKET", ""),

		AppointmentEventsQueueURL: getEnv("APPOINTMENT_EVENTS_QUEUE_URL", ""),
		EventPollInterval:         getEnvAsDuration("EVENT_POLL_INTERVAL", 5*time.Second),
		EventPollWaitSeconds:      getEnvAsInt("EVENT_POLL_WAIT_SECONDS", 10),

		SMSAPIKey:             getEnv("SMS_API_KEY", ""),
		SMSFromNumber:         getEnv("SMS_FROM_NUMBER", ""),
		SMSMessagingProfileID: getEnv("SMS_MESSAGING_PROFILE_ID", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "none"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "CarePulse"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "CarePulse"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
