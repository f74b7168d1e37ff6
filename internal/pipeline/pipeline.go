// Package pipeline coordinates one emotion event end to end: normalize the
// classifier output, freeze the local action, persist, and optionally
// analyze drift or enrich with media. Each request is handled
// independently; the store and the provider clients are the only shared
// state.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/soulsync-ai/soulsync/internal/action"
	"github.com/soulsync-ai/soulsync/internal/classifier"
	"github.com/soulsync-ai/soulsync/internal/drift"
	"github.com/soulsync-ai/soulsync/internal/logging"
	"github.com/soulsync-ai/soulsync/internal/media"
	"github.com/soulsync-ai/soulsync/internal/metrics"
	"github.com/soulsync-ai/soulsync/internal/store"
	"github.com/soulsync-ai/soulsync/internal/taxonomy"
)

// Source types accepted on the submission path.
const (
	SourceAudio = "audio"
	SourceText  = "text"
)

// SubmitRequest carries raw classifier output into the pipeline.
type SubmitRequest struct {
	SourceType  string
	OriginLabel string
	Emotion     string
	Confidence  float64
}

// SubmitResult is the immediate response for a persisted event. The action
// descriptor is frozen into the stored event's action message; Scene and
// Sound ride along for the presentation layer.
type SubmitResult struct {
	Event  store.EmotionEvent
	Action action.Descriptor
}

// AlertRequest carries an externally computed drift transition. The
// magnitude is stored as reported, without re-validation against the
// taxonomy.
type AlertRequest struct {
	FromEmotion    string
	ToEmotion      string
	Magnitude      int
	ConfidenceFrom float64
	ConfidenceTo   float64
	Metadata       string
}

// Coordinator ties the taxonomy, store, analyzer, classifier and media
// orchestrator together. Safe for concurrent use.
type Coordinator struct {
	store    *store.Store
	analyzer *drift.Analyzer
	media    *media.Orchestrator
	clf      classifier.Classifier
	log      zerolog.Logger
}

// New builds a Coordinator. The classifier may be nil when only direct
// submission is needed; the media orchestrator may be nil to disable
// enrichment entirely.
func New(s *store.Store, analyzer *drift.Analyzer, orch *media.Orchestrator, clf classifier.Classifier) *Coordinator {
	return &Coordinator{
		store:    s,
		analyzer: analyzer,
		media:    orch,
		clf:      clf,
		log:      logging.WithComponent("pipeline"),
	}
}

// Submit normalizes, persists and answers one emotion event. The label is
// normalized against the taxonomy (unknown -> neutral) and the confidence
// is clamped into [0, 100]; only a missing or unknown source type is a
// validation failure. On a store failure nothing is persisted and the
// error wraps ErrPersistence.
func (c *Coordinator) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if req.SourceType != SourceAudio && req.SourceType != SourceText {
		return SubmitResult{}, fmt.Errorf("%w: source_type must be %q or %q, got %q",
			ErrValidation, SourceAudio, SourceText, req.SourceType)
	}

	emotion := taxonomy.Normalize(req.Emotion)
	confidence := clampConfidence(req.Confidence)
	desc := action.Lookup(emotion)

	event, err := c.store.AppendEvent(req.SourceType, req.OriginLabel, string(emotion), confidence, desc.Message)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.EventsIngested.WithLabelValues(req.SourceType).Inc()
	c.log.Debug().
		Int64("id", event.ID).
		Str("emotion", event.Emotion).
		Float64("confidence", event.Confidence).
		Msg("event persisted")

	return SubmitResult{Event: event, Action: desc}, nil
}

// AnalyzeText classifies raw text and submits the result.
func (c *Coordinator) AnalyzeText(ctx context.Context, text string) (SubmitResult, error) {
	if text == "" {
		return SubmitResult{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if c.clf == nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrClassification, classifier.ErrDisabled)
	}

	pred, err := c.clf.ClassifyText(ctx, text)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}

	return c.Submit(ctx, SubmitRequest{
		SourceType: SourceText,
		Emotion:    pred.Emotion,
		Confidence: pred.Confidence,
	})
}

// AnalyzeAudio classifies an uploaded clip and submits the result with the
// filename as the origin label.
func (c *Coordinator) AnalyzeAudio(ctx context.Context, filename string, wav []byte) (SubmitResult, error) {
	if len(wav) == 0 {
		return SubmitResult{}, fmt.Errorf("%w: audio payload is empty", ErrValidation)
	}
	if c.clf == nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrClassification, classifier.ErrDisabled)
	}

	pred, err := c.clf.ClassifyAudio(ctx, filename, wav)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}

	return c.Submit(ctx, SubmitRequest{
		SourceType:  SourceAudio,
		OriginLabel: filename,
		Emotion:     pred.Emotion,
		Confidence:  pred.Confidence,
	})
}

// History returns the most recent events, newest first.
func (c *Coordinator) History(limit int) ([]store.EmotionEvent, error) {
	events, err := c.store.RecentEvents(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return events, nil
}

// Stability reads back the most recent window and runs the drift analyzer
// over it (oldest first).
func (c *Coordinator) Stability(limit int) (drift.Metrics, error) {
	events, err := c.store.RecentEvents(limit)
	if err != nil {
		return drift.Metrics{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	metrics.DriftAnalyses.Inc()
	return c.analyzer.Analyze(drift.FromRecent(events)), nil
}

// RecordAlert persists an externally reported drift transition.
func (c *Coordinator) RecordAlert(ctx context.Context, req AlertRequest) (store.DriftAlert, error) {
	if req.FromEmotion == "" || req.ToEmotion == "" {
		return store.DriftAlert{}, fmt.Errorf("%w: from_emotion and to_emotion are required", ErrValidation)
	}
	if req.Magnitude < 0 {
		return store.DriftAlert{}, fmt.Errorf("%w: magnitude must be non-negative", ErrValidation)
	}

	alert, err := c.store.AppendAlert(
		req.FromEmotion, req.ToEmotion, req.Magnitude,
		clampConfidence(req.ConfidenceFrom), clampConfidence(req.ConfidenceTo),
		req.Metadata,
	)
	if err != nil {
		return store.DriftAlert{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	metrics.AlertsRecorded.Inc()
	return alert, nil
}

// Alerts returns the most recent drift alerts, newest first.
func (c *Coordinator) Alerts(limit int) ([]store.DriftAlert, error) {
	alerts, err := c.store.RecentAlerts(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return alerts, nil
}

// Media runs enrichment for an emotion. Failures never invalidate a
// previously persisted event; they come back inside the Result envelope
// with their own error channel.
func (c *Coordinator) Media(ctx context.Context, emotion, mode string, duration time.Duration) media.Result {
	if c.media == nil {
		return media.Result{Type: media.TypeError, Message: "media enrichment disabled"}
	}

	m := media.ParseMode(mode)
	res := c.media.Get(ctx, emotion, m, duration)

	outcome := string(res.Type)
	metrics.ProviderCalls.WithLabelValues(string(m), outcome).Inc()
	if res.Type == media.TypeError {
		c.log.Warn().Str("mode", string(m)).Str("emotion", emotion).Str("reason", res.Message).Msg("media enrichment failed")
	}
	return res
}

// clampConfidence bounds a confidence percentage into [0, 100]. Clamping
// (rather than rejecting) is the documented policy: the classifier is
// trusted to be roughly right and noise must not abort the pipeline.
func clampConfidence(c float64) float64 {
	if c != c || c < 0 { // NaN or negative
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
