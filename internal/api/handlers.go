package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/soulsync-ai/soulsync/internal/action"
	"github.com/soulsync-ai/soulsync/internal/logging"
	"github.com/soulsync-ai/soulsync/internal/media"
	"github.com/soulsync-ai/soulsync/internal/pipeline"
	"github.com/soulsync-ai/soulsync/internal/store"
)

// maxAudioUpload bounds analyze_audio request bodies.
const maxAudioUpload = 16 << 20

// Handler holds the dependencies the route handlers need.
type Handler struct {
	coord *pipeline.Coordinator
	store *store.Store
}

func NewHandler(coord *pipeline.Coordinator, st *store.Store) *Handler {
	return &Handler{coord: coord, store: st}
}

type eventRequest struct {
	SourceType  string  `json:"source_type"`
	OriginLabel string  `json:"origin_label"`
	Emotion     string  `json:"emotion"`
	Confidence  float64 `json:"confidence"`
}

type eventResponse struct {
	Event  store.EmotionEvent `json:"event"`
	Action action.Descriptor  `json:"action"`
}

type textRequest struct {
	Text string `json:"text"`
}

type alertRequest struct {
	FromEmotion    string  `json:"from"`
	ToEmotion      string  `json:"to"`
	Magnitude      int     `json:"magnitude"`
	ConfidenceFrom float64 `json:"confidence_from"`
	ConfidenceTo   float64 `json:"confidence_to"`
	Metadata       string  `json:"metadata,omitempty"`
}

type musicRequest struct {
	Emotion         string `json:"emotion"`
	Mode            string `json:"mode"`
	DurationSeconds int    `json:"duration_seconds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SubmitEvent persists a pre-classified emotion event.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.coord.Submit(r.Context(), pipeline.SubmitRequest{
		SourceType:  req.SourceType,
		OriginLabel: req.OriginLabel,
		Emotion:     req.Emotion,
		Confidence:  req.Confidence,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitPayload(res))
}

// AnalyzeText classifies free text and persists the resulting event.
func (h *Handler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.coord.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitPayload(res))
}

// AnalyzeAudio classifies an uploaded WAV clip and persists the event.
// The body is the raw audio; an optional X-Origin-Label header names the
// clip on the submitting side.
func (h *Handler) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	wav, err := io.ReadAll(io.LimitReader(r.Body, maxAudioUpload))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}
	res, err := h.coord.AnalyzeAudio(r.Context(), r.Header.Get("X-Origin-Label"), wav)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitPayload(res))
}

// History returns the most recent events, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.coord.History(queryLimit(r))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if events == nil {
		events = []store.EmotionEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": events})
}

// Stability computes drift metrics over the recent window.
func (h *Handler) Stability(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.coord.Stability(queryLimit(r))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stability": metrics})
}

// Alerts returns the most recent drift alerts, newest first.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.coord.Alerts(queryLimit(r))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if alerts == nil {
		alerts = []store.DriftAlert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// RecordAlert persists an externally detected drift transition.
func (h *Handler) RecordAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	alert, err := h.coord.RecordAlert(r.Context(), pipeline.AlertRequest{
		FromEmotion:    req.FromEmotion,
		ToEmotion:      req.ToEmotion,
		Magnitude:      req.Magnitude,
		ConfidenceFrom: req.ConfidenceFrom,
		ConfidenceTo:   req.ConfidenceTo,
		Metadata:       req.Metadata,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok", "alert": alert})
}

// Music resolves a media result for an emotion. Synthesized audio streams
// back as a WAV body; curated and error outcomes are JSON envelopes.
func (h *Handler) Music(w http.ResponseWriter, r *http.Request) {
	var req musicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	duration := time.Duration(req.DurationSeconds) * time.Second
	res := h.coord.Media(r.Context(), req.Emotion, req.Mode, duration)
	if res.Type == media.TypeBytes {
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Audio)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(res.Audio); err != nil {
			log := logging.WithComponent("api")
			log.Warn().Err(err).Msg("streaming synthesized audio failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Health reports liveness plus a store ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func submitPayload(res pipeline.SubmitResult) eventResponse {
	return eventResponse{Event: res.Event, Action: res.Action}
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logging.WithComponent("api")
		log.Warn().Err(err).Msg("encoding response failed")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrClassification):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, pipeline.ErrPersistence):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
