package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	transcriberpkg "github.com/mindhaven/sessioncore/internal/transcriber"
	"github.com/mindhaven/sessioncore/internal/transient"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	speechAPIEndpointPort = 443
	audioSampleRateHertz  = 48000
	audioChannelCount     = 2
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Language        string
	Location        string
	Model           string
}

type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	language        string
	location        string
	model           string
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriberpkg.Transcriber {
	return &CloudSpeechTranscriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		language:        cfg.Language,
		location:        strings.TrimSpace(cfg.Location),
		model:           strings.TrimSpace(cfg.Model),
	}
}

func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	slog.Info("submitting recording to cloud speech", "location", t.location, "language", t.language, "model", t.model, "pcm_bytes", len(pcm))

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return "", fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return "", classify(fmt.Errorf("create speech client: %w", err))
	}
	defer func() {
		_ = client.Close()
	}()

	recognizer := fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location)
	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Recognizer: recognizer,
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{t.language},
			DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
				ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
					Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
					SampleRateHertz:   audioSampleRateHertz,
					AudioChannelCount: audioChannelCount,
				},
			},
			Features: &speechpb.RecognitionFeatures{},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: pcm},
	})
	if err != nil {
		return "", classify(fmt.Errorf("recognize: %w", err))
	}

	var lines []string
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		text := strings.TrimSpace(result.GetAlternatives()[0].GetTranscript())
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	transcript := strings.Join(lines, "\n")
	slog.Info("cloud speech recognition finished", "results", len(resp.GetResults()), "transcript_chars", len(transcript))
	return transcript, nil
}

// classify marks gRPC failures that are worth retrying; everything else
// (auth, invalid audio) fails the stage immediately.
func classify(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return transient.Wrap(err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return transient.Wrap(err)
	default:
		return err
	}
}
