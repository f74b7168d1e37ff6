package provider

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/soulsync-ai/soulsync/internal/media"
)

// SynthConfig configures the audio synthesis client.
type SynthConfig struct {
	APIKey string
	Model  string
	Voice  string
}

// Synth generates short audio clips from a text prompt through the speech
// synthesis API.
type Synth struct {
	client openai.Client
	model  openai.SpeechModel
	voice  openai.AudioSpeechNewParamsVoice
}

// NewSynth builds a Synth. Returns media.ErrUnavailable when no API key is
// configured.
func NewSynth(cfg SynthConfig) (*Synth, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("synthesis API key not set: %w", media.ErrUnavailable)
	}

	model := openai.SpeechModel(cfg.Model)
	if model == "" {
		model = openai.SpeechModelGPT4oMiniTTS
	}
	voice := openai.AudioSpeechNewParamsVoice(cfg.Voice)
	if voice == "" {
		voice = openai.AudioSpeechNewParamsVoiceAlloy
	}

	return &Synth{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
		voice:  voice,
	}, nil
}

// Synthesize renders the prompt as a WAV clip. The duration is advisory;
// it is folded into the generation instructions since the speech API has no
// hard duration parameter.
func (s *Synth) Synthesize(ctx context.Context, prompt string, duration time.Duration) ([]byte, error) {
	params := openai.AudioSpeechNewParams{
		Model:          s.model,
		Voice:          s.voice,
		Input:          prompt,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	}
	if duration > 0 {
		params.Instructions = openai.String(fmt.Sprintf("Keep the rendition close to %d seconds.", int(duration.Seconds())))
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("synthesize audio: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned empty audio")
	}
	return audio, nil
}
