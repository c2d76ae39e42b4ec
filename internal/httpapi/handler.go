package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mindhaven/sessioncore/internal/connect"
	"github.com/mindhaven/sessioncore/internal/e2ee"
	"github.com/mindhaven/sessioncore/internal/insights"
	"github.com/mindhaven/sessioncore/internal/media"
	"github.com/mindhaven/sessioncore/internal/pipeline"
	"github.com/mindhaven/sessioncore/internal/session"
)

// Handler exposes the session lifecycle and post-session results over JSON.
type Handler struct {
	sessions *session.Manager
	store    insights.Store
	runner   *pipeline.Runner
	details  connect.DetailsClient
}

func NewHandler(sessions *session.Manager, store insights.Store, runner *pipeline.Runner, details connect.DetailsClient) *Handler {
	return &Handler{sessions: sessions, store: store, runner: runner, details: details}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions/join", h.handleJoin)
	mux.HandleFunc("POST /v1/sessions/{room}/leave", h.handleLeave)
	mux.HandleFunc("GET /v1/sessions/{room}/transcript", h.handleTranscript)
	mux.HandleFunc("GET /v1/sessions/{room}/insights", h.handleInsights)
	mux.HandleFunc("POST /v1/sessions/{room}/insights/retry", h.handleInsightsRetry)
	mux.HandleFunc("GET /v1/connection-details", h.handleConnectionDetails)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return mux
}

type joinRequest struct {
	RoomName    string `json:"roomName"`
	DisplayName string `json:"displayName"`
	Encrypted   bool   `json:"encrypted"`
	Passphrase  string `json:"passphrase"`
	Codec       string `json:"codec"`
	HighQuality bool   `json:"highQuality"`
	Region      string `json:"region"`
}

type joinResponse struct {
	SessionID string `json:"sessionId"`
	RoomName  string `json:"roomName"`
	State     string `json:"state"`
	Encrypted bool   `json:"encrypted"`
	// Passphrase is set only when the service generated one for this join;
	// the caller shares it with other participants out of band.
	Passphrase string `json:"passphrase,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var generated string
	if req.Encrypted && req.Passphrase == "" {
		passphrase, err := e2ee.GeneratePassphrase()
		if err != nil {
			slog.Error("passphrase generation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not generate a passphrase")
			return
		}
		req.Passphrase = passphrase
		generated = passphrase
	}

	sess, err := h.sessions.Join(r.Context(), session.JoinRequest{
		RoomName:    req.RoomName,
		DisplayName: req.DisplayName,
		Encrypted:   req.Encrypted,
		Passphrase:  req.Passphrase,
		Codec:       req.Codec,
		HighQuality: req.HighQuality,
		Region:      req.Region,
	})
	if err != nil {
		slog.Warn("join failed", "room", req.RoomName, "error", err)
		switch {
		case errors.Is(err, session.ErrEmptyDisplayName):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, session.ErrRoomBusy):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, media.ErrEncryptionUnsupported):
			writeError(w, http.StatusUnprocessableEntity, sessionReason(sess, err))
		default:
			writeError(w, http.StatusBadGateway, sessionReason(sess, err))
		}
		return
	}

	writeJSON(w, http.StatusCreated, joinResponse{
		SessionID:  sess.ID,
		RoomName:   sess.RoomName,
		State:      string(sess.State()),
		Encrypted:  sess.Encrypted,
		Passphrase: generated,
	})
}

// sessionReason prefers the session's recorded failure reason over the raw
// error chain, which may name internal hosts.
func sessionReason(sess *session.CallSession, err error) string {
	if sess != nil {
		if reason := sess.ErrorReason(); reason != "" {
			return reason
		}
	}
	return err.Error()
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	if err := h.sessions.Leave(room); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transcriptEntry struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Final       bool   `json:"final"`
	Participant string `json:"participant,omitempty"`
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	fragments, err := h.sessions.Transcript(room)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	entries := make([]transcriptEntry, 0, len(fragments))
	for _, f := range fragments {
		entries = append(entries, transcriptEntry{ID: f.ID, Text: f.Text, Final: f.Final, Participant: f.Participant})
	}
	writeJSON(w, http.StatusOK, map[string]any{"roomName": room, "entries": entries})
}

type insightsResponse struct {
	RoomName      string   `json:"roomName"`
	Status        string   `json:"status"`
	Transcript    string   `json:"transcript,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Insights      []string `json:"insights,omitempty"`
	Mood          string   `json:"mood,omitempty"`
	Goals         []string `json:"goals,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	FailureReason string   `json:"failureReason,omitempty"`
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	doc, err := h.store.Get(r.Context(), room)
	if err != nil {
		if errors.Is(err, insights.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no insights for this room")
			return
		}
		slog.Error("failed to load insights", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load insights")
		return
	}
	writeJSON(w, http.StatusOK, insightsResponse{
		RoomName:      doc.RoomID,
		Status:        string(doc.Status),
		Transcript:    doc.Transcript,
		Summary:       doc.Summary,
		Insights:      doc.Insights,
		Mood:          doc.Mood,
		Goals:         doc.Goals,
		Warnings:      doc.Warnings,
		FailureReason: doc.FailureReason,
	})
}

func (h *Handler) handleInsightsRetry(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	doc, err := h.store.Get(r.Context(), room)
	if err != nil {
		if errors.Is(err, insights.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no insights for this room")
			return
		}
		slog.Error("failed to load insights", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load insights")
		return
	}
	if doc.Status != insights.StatusFailed {
		writeError(w, http.StatusConflict, "only failed runs can be retried")
		return
	}

	go func() {
		if err := h.runner.Retry(context.Background(), room); err != nil {
			slog.Error("retry run failed", "room", room, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"roomName": room, "status": string(insights.StatusPending)})
}

func (h *Handler) handleConnectionDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	room := q.Get("roomName")
	participant := q.Get("participantName")
	if room == "" || participant == "" {
		writeError(w, http.StatusBadRequest, "roomName and participantName are required")
		return
	}
	details, err := h.details.Fetch(r.Context(), room, participant, q.Get("region"))
	if err != nil {
		slog.Error("connection details fetch failed", "room", room, "error", err)
		writeError(w, http.StatusBadGateway, "could not obtain connection details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
