package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/mindhaven/sessioncore/internal/config"
)

type envConfig struct {
	Env        string `env:"ENV" envDefault:"production"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	ConnectionDetailsURL string `env:"CONNECTION_DETAILS_URL"`
	MediaServerURL       string `env:"MEDIA_SERVER_URL"`
	TokenSigningSecret   string `env:"TOKEN_SIGNING_SECRET"`
	TokenTTLMin          int    `env:"TOKEN_TTL_MIN" envDefault:"15"`

	StorageBaseURL string `env:"STORAGE_BASE_URL,required"`

	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID,required"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON,required"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	TranscribeLanguage         string `env:"TRANSCRIBE_LANGUAGE" envDefault:"en-US"`

	SummarizerURL    string `env:"SUMMARIZER_URL,required"`
	SummarizerAPIKey string `env:"SUMMARIZER_API_KEY"`
	SummarizerModel  string `env:"SUMMARIZER_MODEL,required"`

	RecordingWaitMaxSec   int `env:"RECORDING_WAIT_MAX_SEC" envDefault:"300"`
	ServiceRetryMaxTries  int `env:"SERVICE_RETRY_MAX_TRIES" envDefault:"4"`
	ServiceCallTimeoutSec int `env:"SERVICE_CALL_TIMEOUT_SEC" envDefault:"60"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		ListenAddr:                 raw.ListenAddr,
		DatabaseURL:                raw.DatabaseURL,
		ConnectionDetailsURL:       raw.ConnectionDetailsURL,
		MediaServerURL:             raw.MediaServerURL,
		TokenSigningSecret:         raw.TokenSigningSecret,
		TokenTTLMin:                raw.TokenTTLMin,
		StorageBaseURL:             raw.StorageBaseURL,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		TranscribeLanguage:         raw.TranscribeLanguage,
		SummarizerURL:              raw.SummarizerURL,
		SummarizerAPIKey:           raw.SummarizerAPIKey,
		SummarizerModel:            raw.SummarizerModel,
		RecordingWaitMaxSec:        raw.RecordingWaitMaxSec,
		ServiceRetryMaxTries:       raw.ServiceRetryMaxTries,
		ServiceCallTimeoutSec:      raw.ServiceCallTimeoutSec,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
