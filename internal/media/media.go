// Package media turns an emotion into an audio response by calling one of
// two external capabilities: a curated catalog lookup or on-demand
// synthesis. The orchestrator is stateless; it persists nothing and
// normalizes both provider successes and failures into one Result
// envelope so callers never see a raw provider error escape.
package media

import (
	"context"
	"errors"
	"time"

	"github.com/soulsync-ai/soulsync/internal/taxonomy"
)

// Mode selects the media path. Selection is explicit: generated mode never
// falls back to curated on failure.
type Mode string

const (
	ModeCurated   Mode = "curated"
	ModeGenerated Mode = "generated"
)

// ParseMode maps a raw mode string to a Mode. Anything other than
// "generated" takes the curated path.
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeGenerated {
		return ModeGenerated
	}
	return ModeCurated
}

// Sentinel results from capability implementations.
var (
	// ErrNoPreview means the curated catalog has nothing for this
	// emotion. It is an expected empty outcome, not a provider failure.
	ErrNoPreview = errors.New("no preview found")

	// ErrUnavailable means the capability is not configured or not
	// reachable (missing credentials, disabled feature, open breaker).
	ErrUnavailable = errors.New("provider unavailable")
)

// CuratedSource looks up a pre-existing hosted audio preview for an emotion.
type CuratedSource interface {
	FetchPreview(ctx context.Context, emotion taxonomy.Label) (string, error)
}

// Synthesizer generates audio on demand from a text prompt.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string, duration time.Duration) ([]byte, error)
}

// ResultType discriminates the Result envelope.
type ResultType string

const (
	TypeURL   ResultType = "url"
	TypeBytes ResultType = "bytes"
	TypeError ResultType = "error"
)

// Meta describes where a successful result came from.
type Meta struct {
	Source string `json:"source,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// Result is the uniform response envelope for media enrichment. Exactly one
// of URL or Audio is set for successful results; Message carries the reason
// for TypeError results.
type Result struct {
	Type    ResultType `json:"type"`
	URL     string     `json:"url,omitempty"`
	Audio   []byte     `json:"-"`
	Message string     `json:"message,omitempty"`
	Meta    Meta       `json:"meta,omitempty"`
}

// Timeouts bound each external call. Lookups are quick; synthesis can take
// tens of seconds.
const (
	DefaultLookupTimeout    = 5 * time.Second
	DefaultSynthesisTimeout = 45 * time.Second
)

// Orchestrator routes media requests to the configured capabilities.
// It is safe for concurrent use; a failed or timed-out call affects only
// the request that made it.
type Orchestrator struct {
	curated CuratedSource
	synth   Synthesizer

	lookupTimeout time.Duration
	synthTimeout  time.Duration
}

// NewOrchestrator wires the two capabilities. Either may be nil, in which
// case requests for that mode report the capability as unavailable.
func NewOrchestrator(curated CuratedSource, synth Synthesizer) *Orchestrator {
	return &Orchestrator{
		curated:       curated,
		synth:         synth,
		lookupTimeout: DefaultLookupTimeout,
		synthTimeout:  DefaultSynthesisTimeout,
	}
}

// WithTimeouts overrides the per-call timeouts. Zero values keep defaults.
func (o *Orchestrator) WithTimeouts(lookup, synthesis time.Duration) *Orchestrator {
	if lookup > 0 {
		o.lookupTimeout = lookup
	}
	if synthesis > 0 {
		o.synthTimeout = synthesis
	}
	return o
}

// Get fetches media for an emotion. The raw emotion is normalized first, so
// unknown labels take the neutral path. Failures come back as TypeError
// results; they are reported once and never retried here.
func (o *Orchestrator) Get(ctx context.Context, rawEmotion string, mode Mode, duration time.Duration) Result {
	emotion := taxonomy.Normalize(rawEmotion)

	if mode == ModeGenerated {
		return o.generated(ctx, emotion, duration)
	}
	return o.curatedPreview(ctx, emotion)
}

func (o *Orchestrator) curatedPreview(ctx context.Context, emotion taxonomy.Label) Result {
	if o.curated == nil {
		return errorResult("curated media provider not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, o.lookupTimeout)
	defer cancel()

	url, err := o.curated.FetchPreview(ctx, emotion)
	switch {
	case errors.Is(err, ErrNoPreview):
		return errorResult("No preview found")
	case err != nil:
		return errorResult(err.Error())
	}

	return Result{
		Type: TypeURL,
		URL:  url,
		Meta: Meta{Source: "curated"},
	}
}

func (o *Orchestrator) generated(ctx context.Context, emotion taxonomy.Label, duration time.Duration) Result {
	if o.synth == nil {
		return errorResult("synthesis provider not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, o.synthTimeout)
	defer cancel()

	prompt := PromptFor(emotion)
	audio, err := o.synth.Synthesize(ctx, prompt, duration)
	if err != nil {
		// No fallback to the curated path: mode selection is explicit
		// and errors are surfaced as-is.
		return errorResult(err.Error())
	}

	return Result{
		Type:  TypeBytes,
		Audio: audio,
		Meta:  Meta{Source: "generated", Prompt: prompt},
	}
}

func errorResult(msg string) Result {
	return Result{Type: TypeError, Message: msg}
}
