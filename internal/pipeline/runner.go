package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mindhaven/sessioncore/internal/audio"
	"github.com/mindhaven/sessioncore/internal/insights"
	"github.com/mindhaven/sessioncore/internal/storage"
	"github.com/mindhaven/sessioncore/internal/summarizer"
	"github.com/mindhaven/sessioncore/internal/transcriber"
	"github.com/mindhaven/sessioncore/internal/transient"
)

// Failure reasons recorded on the insights document.
const (
	ReasonRecordingNotFound   = "recording not found"
	ReasonTranscriptionFailed = "transcription failed"
	ReasonSummarizationFailed = "summarization failed"
)

var ErrNotRetryable = errors.New("insights document is not in a retryable state")

// errYielded signals that this invocation observed another run owning the
// document, waited for it, and must not execute further stages.
var errYielded = errors.New("yielded to concurrent pipeline run")

type Config struct {
	// RecordingWaitMax bounds how long Stage 1 waits for the recording
	// service to finalize the artifact.
	RecordingWaitMax time.Duration
	// ServiceMaxTries bounds attempts per service stage (transcribe,
	// summarize), counting the first attempt.
	ServiceMaxTries uint
	// CallTimeout applies to each individual external call.
	CallTimeout time.Duration
	// PollInterval paces the active-status watch when another run owns
	// the document.
	PollInterval time.Duration
	// InitialInterval seeds the exponential backoff.
	InitialInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.RecordingWaitMax <= 0 {
		c.RecordingWaitMax = 5 * time.Minute
	}
	if c.ServiceMaxTries == 0 {
		c.ServiceMaxTries = 4
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 500 * time.Millisecond
	}
	return c
}

// Runner converts a finished call's recording into structured insights:
// fetch the artifact, transcribe it, summarize it, persist the result. One
// Runner serves all rooms; per-room runs are independent and coordinate only
// through the insights document's status field.
type Runner struct {
	store   insights.Store
	objects storage.ObjectStore
	decoder audio.Decoder
	stt     transcriber.Transcriber
	llm     summarizer.Summarizer
	cfg     Config
}

func NewRunner(store insights.Store, objects storage.ObjectStore, decoder audio.Decoder, stt transcriber.Transcriber, llm summarizer.Summarizer, cfg Config) *Runner {
	return &Runner{
		store:   store,
		objects: objects,
		decoder: decoder,
		stt:     stt,
		llm:     llm,
		cfg:     cfg.withDefaults(),
	}
}

// Run processes the recording for roomID from scratch. Re-running a room
// that already completed overwrites its document with the new result. If
// another run currently owns the document (status transcribing or
// summarizing), Run waits for it to finish and returns without re-triggering
// any stage.
func (r *Runner) Run(ctx context.Context, roomID string) error {
	doc, err := r.store.Get(ctx, roomID)
	if err != nil && !errors.Is(err, insights.ErrNotFound) {
		return fmt.Errorf("load insights document: %w", err)
	}
	if doc != nil && doc.Status.Active() {
		slog.Info("pipeline already active for room; watching instead of re-running", "room", roomID, "status", doc.Status)
		return r.waitForIdle(ctx, roomID)
	}

	if err := r.store.CreatePending(ctx, roomID); err != nil {
		return fmt.Errorf("create pending insights document: %w", err)
	}
	slog.Info("pipeline started", "room", roomID)

	return yieldedOK(r.runFromFetch(ctx, roomID))
}

func (r *Runner) runFromFetch(ctx context.Context, roomID string) error {
	recording, err := r.fetchRecording(ctx, roomID)
	if err != nil {
		return err
	}
	transcript, err := r.transcribeStage(ctx, roomID, insights.StatusPending, recording)
	if err != nil {
		return err
	}
	return r.summarizeStage(ctx, roomID, insights.StatusTranscribing, transcript)
}

// yieldedOK turns a yield into success: the concurrent run that owned the
// document is responsible for the outcome.
func yieldedOK(err error) error {
	if errors.Is(err, errYielded) {
		return nil
	}
	return err
}

// Retry re-enters a failed document and resumes from the last successful
// stage: a preserved transcript resumes at summarization, otherwise the run
// restarts at the fetch stage (the artifact reference is the room-derived
// storage key, so no extra state is needed).
func (r *Runner) Retry(ctx context.Context, roomID string) error {
	doc, err := r.store.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if doc.Status.Active() {
		return r.waitForIdle(ctx, roomID)
	}
	if doc.Status != insights.StatusFailed {
		return fmt.Errorf("%w: status is %s", ErrNotRetryable, doc.Status)
	}
	ok, err := r.store.TransitionStatus(ctx, roomID, insights.StatusFailed, insights.StatusPending)
	if err != nil {
		return err
	}
	if !ok {
		return r.waitForIdle(ctx, roomID)
	}
	slog.Info("pipeline retry started", "room", roomID, "has_transcript", doc.Transcript != "")

	if doc.Transcript != "" {
		return yieldedOK(r.summarizeStage(ctx, roomID, insights.StatusPending, doc.Transcript))
	}
	return yieldedOK(r.runFromFetch(ctx, roomID))
}

// fetchRecording is Stage 1: recording finalization lags call teardown, so
// absence is retried with backoff up to RecordingWaitMax.
func (r *Runner) fetchRecording(ctx context.Context, roomID string) ([]byte, error) {
	key := storage.RecordingKey(roomID)
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.cfg.InitialInterval

	recording, err := backoff.Retry(ctx, func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
		data, err := r.objects.GetObject(callCtx, key)
		if err != nil {
			slog.Warn("recording not yet available", "room", roomID, "key", key, "error", err)
			return nil, err
		}
		return data, nil
	}, backoff.WithBackOff(expo), backoff.WithMaxElapsedTime(r.cfg.RecordingWaitMax))
	if err != nil {
		slog.Error("recording never appeared within wait window", "room", roomID, "key", key, "error", err)
		if markErr := r.store.MarkFailed(ctx, roomID, ReasonRecordingNotFound); markErr != nil {
			slog.Error("failed to record pipeline failure", "room", roomID, "error", markErr)
		}
		return nil, fmt.Errorf("fetch recording for %s: %w", roomID, err)
	}
	slog.Info("recording fetched", "room", roomID, "key", key, "bytes", len(recording))
	return recording, nil
}

// transcribeStage is Stage 2: claim the document, decode the artifact, and
// transcribe with a bounded retry budget. On exhaustion the transcript column
// stays empty so a manual retry re-enters here.
func (r *Runner) transcribeStage(ctx context.Context, roomID string, from insights.Status, recording []byte) (string, error) {
	if err := r.claim(ctx, roomID, from, insights.StatusTranscribing); err != nil {
		return "", err
	}

	pcm, err := r.decoder.DecodePCM(recording)
	if err != nil {
		slog.Error("recording decode failed", "room", roomID, "error", err)
		r.markFailed(ctx, roomID, ReasonTranscriptionFailed)
		return "", fmt.Errorf("decode recording for %s: %w", roomID, err)
	}

	transcript, err := retryServiceCall(ctx, r, "transcribe", roomID, func(callCtx context.Context) (string, error) {
		return r.stt.Transcribe(callCtx, pcm)
	})
	if err != nil {
		r.markFailed(ctx, roomID, ReasonTranscriptionFailed)
		return "", fmt.Errorf("transcribe recording for %s: %w", roomID, err)
	}

	if err := r.store.SetTranscript(ctx, roomID, transcript); err != nil {
		r.markFailed(ctx, roomID, ReasonTranscriptionFailed)
		return "", fmt.Errorf("persist transcript for %s: %w", roomID, err)
	}
	slog.Info("transcription stage complete", "room", roomID, "transcript_chars", len(transcript))
	return transcript, nil
}

// summarizeStage is Stage 3 plus completion. The transcript is already
// persisted, so a failure here resumes at summarization on retry.
func (r *Runner) summarizeStage(ctx context.Context, roomID string, from insights.Status, transcript string) error {
	if err := r.claim(ctx, roomID, from, insights.StatusSummarizing); err != nil {
		return err
	}

	result, err := retryServiceCall(ctx, r, "summarize", roomID, func(callCtx context.Context) (summarizer.Result, error) {
		return r.llm.Summarize(callCtx, transcript)
	})
	if err != nil {
		r.markFailed(ctx, roomID, ReasonSummarizationFailed)
		return fmt.Errorf("summarize transcript for %s: %w", roomID, err)
	}

	if err := r.store.SetResult(ctx, roomID, insights.Result{
		Summary:  result.Summary,
		Insights: result.Insights,
		Mood:     result.Mood,
		Goals:    result.Goals,
		Warnings: result.Warnings,
	}); err != nil {
		r.markFailed(ctx, roomID, ReasonSummarizationFailed)
		return fmt.Errorf("persist insights for %s: %w", roomID, err)
	}

	ok, err := r.store.TransitionStatus(ctx, roomID, insights.StatusSummarizing, insights.StatusComplete)
	if err != nil {
		return fmt.Errorf("complete insights for %s: %w", roomID, err)
	}
	if !ok {
		return fmt.Errorf("lost ownership of insights document for %s before completion", roomID)
	}
	slog.Info("pipeline complete", "room", roomID)
	return nil
}

// claim performs the conditional status transition that makes this run the
// document's single writer. Losing the claim means another run owns it.
func (r *Runner) claim(ctx context.Context, roomID string, from, to insights.Status) error {
	ok, err := r.store.TransitionStatus(ctx, roomID, from, to)
	if err != nil {
		return fmt.Errorf("transition %s to %s for %s: %w", from, to, roomID, err)
	}
	if !ok {
		slog.Info("lost status claim; another run owns the document", "room", roomID, "from", from, "to", to)
		if waitErr := r.waitForIdle(ctx, roomID); waitErr != nil {
			return waitErr
		}
		return errYielded
	}
	slog.Info("pipeline stage transition", "room", roomID, "from", from, "to", to)
	return nil
}

// retryServiceCall runs one external-service call with per-call timeouts and
// a bounded retry budget. Timeouts count as transient failures.
func retryServiceCall[T any](ctx context.Context, r *Runner, stage, roomID string, call func(context.Context) (T, error)) (T, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.cfg.InitialInterval

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
		out, err := call(callCtx)
		if err != nil {
			retryable := transient.Is(err) || errors.Is(err, context.DeadlineExceeded)
			slog.Warn("pipeline service call failed", "room", roomID, "stage", stage, "attempt", attempt, "retryable", retryable, "error", err)
			if !retryable {
				return out, backoff.Permanent(err)
			}
			return out, err
		}
		return out, nil
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(r.cfg.ServiceMaxTries))
}

func (r *Runner) markFailed(ctx context.Context, roomID, reason string) {
	if err := r.store.MarkFailed(ctx, roomID, reason); err != nil {
		slog.Error("failed to record pipeline failure", "room", roomID, "reason", reason, "error", err)
	}
}

// waitForIdle polls the document until the active run finishes; the waiting
// invocation never re-triggers stages.
func (r *Runner) waitForIdle(ctx context.Context, roomID string) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			doc, err := r.store.Get(ctx, roomID)
			if err != nil {
				return err
			}
			if !doc.Status.Active() {
				slog.Info("active pipeline run finished", "room", roomID, "status", doc.Status)
				return nil
			}
		}
	}
}
