package config

import "fmt"

type Config struct {
	Env        string
	ListenAddr string

	DatabaseURL string

	// When ConnectionDetailsURL is empty, sessiond serves its own
	// connection-details endpoint and mints participant tokens locally.
	ConnectionDetailsURL string
	MediaServerURL       string
	TokenSigningSecret   string
	TokenTTLMin          int

	StorageBaseURL string

	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	TranscribeLanguage         string

	SummarizerURL    string
	SummarizerAPIKey string
	SummarizerModel  string

	RecordingWaitMaxSec   int
	ServiceRetryMaxTries  int
	ServiceCallTimeoutSec int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.ConnectionDetailsURL == "" {
		if c.MediaServerURL == "" {
			return fmt.Errorf("MEDIA_SERVER_URL is required when CONNECTION_DETAILS_URL is unset")
		}
		if c.TokenSigningSecret == "" {
			return fmt.Errorf("TOKEN_SIGNING_SECRET is required when CONNECTION_DETAILS_URL is unset")
		}
	}
	if c.TokenTTLMin <= 0 {
		return fmt.Errorf("TOKEN_TTL_MIN must be positive, got %d", c.TokenTTLMin)
	}
	if c.RecordingWaitMaxSec <= 0 {
		return fmt.Errorf("RECORDING_WAIT_MAX_SEC must be positive, got %d", c.RecordingWaitMaxSec)
	}
	if c.ServiceRetryMaxTries <= 0 {
		return fmt.Errorf("SERVICE_RETRY_MAX_TRIES must be positive, got %d", c.ServiceRetryMaxTries)
	}
	if c.ServiceCallTimeoutSec <= 0 {
		return fmt.Errorf("SERVICE_CALL_TIMEOUT_SEC must be positive, got %d", c.ServiceCallTimeoutSec)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "LISTEN_ADDR", value: c.ListenAddr},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "STORAGE_BASE_URL", value: c.StorageBaseURL},
		{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
		{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		{name: "TRANSCRIBE_LANGUAGE", value: c.TranscribeLanguage},
		{name: "SUMMARIZER_URL", value: c.SummarizerURL},
		{name: "SUMMARIZER_MODEL", value: c.SummarizerModel},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
