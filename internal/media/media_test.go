package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soulsync-ai/soulsync/internal/taxonomy"
)

type fakeCurated struct {
	url     string
	err     error
	calls   int
	gotCtx  context.Context
	emotion taxonomy.Label
}

func (f *fakeCurated) FetchPreview(ctx context.Context, emotion taxonomy.Label) (string, error) {
	f.calls++
	f.gotCtx = ctx
	f.emotion = emotion
	return f.url, f.err
}

type fakeSynth struct {
	audio []byte
	err   error
	calls int
	prompt string
}

func (f *fakeSynth) Synthesize(ctx context.Context, prompt string, duration time.Duration) ([]byte, error) {
	f.calls++
	f.prompt = prompt
	return f.audio, f.err
}

func TestGet_CuratedSuccess(t *testing.T) {
	curated := &fakeCurated{url: "https://previews.example/happy.mp3"}
	o := NewOrchestrator(curated, nil)

	res := o.Get(context.Background(), "happy", ModeCurated, 0)
	if res.Type != TypeURL {
		t.Fatalf("Type = %s, want url", res.Type)
	}
	if res.URL != curated.url {
		t.Errorf("URL = %q, want %q", res.URL, curated.url)
	}
	if res.Meta.Source != "curated" {
		t.Errorf("Meta.Source = %q, want curated", res.Meta.Source)
	}
}

func TestGet_CuratedNoPreview(t *testing.T) {
	o := NewOrchestrator(&fakeCurated{err: ErrNoPreview}, nil)

	res := o.Get(context.Background(), "happy", ModeCurated, 0)
	if res.Type != TypeError {
		t.Fatalf("Type = %s, want error", res.Type)
	}
	if res.Message != "No preview found" {
		t.Errorf("Message = %q, want %q", res.Message, "No preview found")
	}
}

func TestGet_CuratedUnavailableReportedNotRetried(t *testing.T) {
	curated := &fakeCurated{err: errors.New("catalog credentials not set")}
	o := NewOrchestrator(curated, nil)

	res := o.Get(context.Background(), "sad", ModeCurated, 0)
	if res.Type != TypeError {
		t.Fatalf("Type = %s, want error", res.Type)
	}
	if !strings.Contains(res.Message, "credentials") {
		t.Errorf("Message = %q, want credentials reason", res.Message)
	}
	if curated.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", curated.calls)
	}
}

func TestGet_CuratedNotConfigured(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	res := o.Get(context.Background(), "calm", ModeCurated, 0)
	if res.Type != TypeError {
		t.Fatalf("Type = %s, want error", res.Type)
	}
}

func TestGet_GeneratedSuccess(t *testing.T) {
	synth := &fakeSynth{audio: []byte("RIFFfake")}
	o := NewOrchestrator(nil, synth)

	res := o.Get(context.Background(), "fearful", ModeGenerated, 8*time.Second)
	if res.Type != TypeBytes {
		t.Fatalf("Type = %s, want bytes", res.Type)
	}
	if string(res.Audio) != "RIFFfake" {
		t.Errorf("Audio = %q", res.Audio)
	}
	if res.Meta.Source != "generated" {
		t.Errorf("Meta.Source = %q, want generated", res.Meta.Source)
	}
	if !strings.Contains(res.Meta.Prompt, "fearful") {
		t.Errorf("Meta.Prompt = %q, want emotion in prompt", res.Meta.Prompt)
	}
	if !strings.Contains(synth.prompt, "dark cinematic ambient") {
		t.Errorf("prompt = %q, want catalog flavor text", synth.prompt)
	}
}

// Generated mode surfaces failures without trying the curated path.
func TestGet_GeneratedFailureNoFallback(t *testing.T) {
	curated := &fakeCurated{url: "https://previews.example/x.mp3"}
	synth := &fakeSynth{err: ErrUnavailable}
	o := NewOrchestrator(curated, synth)

	res := o.Get(context.Background(), "happy", ModeGenerated, time.Second)
	if res.Type != TypeError {
		t.Fatalf("Type = %s, want error", res.Type)
	}
	if res.Message == "" {
		t.Error("Message empty, want failure reason")
	}
	if curated.calls != 0 {
		t.Errorf("curated.calls = %d, want 0 (no fallback)", curated.calls)
	}
}

func TestGet_UnknownModeDefaultsToCurated(t *testing.T) {
	curated := &fakeCurated{url: "https://previews.example/n.mp3"}
	synth := &fakeSynth{audio: []byte("x")}
	o := NewOrchestrator(curated, synth)

	res := o.Get(context.Background(), "neutral", ParseMode("auto"), 0)
	if res.Type != TypeURL {
		t.Fatalf("Type = %s, want url", res.Type)
	}
	if synth.calls != 0 {
		t.Errorf("synth.calls = %d, want 0", synth.calls)
	}
}

func TestGet_UnknownEmotionNormalizedToNeutral(t *testing.T) {
	curated := &fakeCurated{url: "https://previews.example/n.mp3"}
	o := NewOrchestrator(curated, nil)

	o.Get(context.Background(), "flabbergasted", ModeCurated, 0)
	if curated.emotion != taxonomy.Neutral {
		t.Errorf("provider saw emotion %s, want neutral", curated.emotion)
	}
}

func TestGet_CancelledContextSurfaces(t *testing.T) {
	blocked := blockingSynth{}
	o := NewOrchestrator(nil, blocked).WithTimeouts(0, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.Get(ctx, "calm", ModeGenerated, time.Second)
	if res.Type != TypeError {
		t.Fatalf("Type = %s, want error", res.Type)
	}
	if !strings.Contains(res.Message, "context") {
		t.Errorf("Message = %q, want context cancellation reason", res.Message)
	}
}

type blockingSynth struct{}

func (blockingSynth) Synthesize(ctx context.Context, prompt string, duration time.Duration) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPromptFor_FallsBackToNeutralQuery(t *testing.T) {
	p := PromptFor(taxonomy.Label("whatever"))
	if !strings.Contains(p, "chill instrumental") {
		t.Errorf("PromptFor(unknown) = %q, want neutral flavor", p)
	}
}
