// Package classifier defines the emotion classification capability the
// pipeline consumes. Inference itself runs in an external model service;
// this package only ships the interface and an HTTP client for it.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// Prediction is the classifier's output for one input.
type Prediction struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Classifier produces an emotion label and a confidence percentage for raw
// text or an uploaded audio clip.
type Classifier interface {
	ClassifyText(ctx context.Context, text string) (Prediction, error)
	ClassifyAudio(ctx context.Context, filename string, wav []byte) (Prediction, error)
}

// ErrDisabled means no classifier endpoint is configured. Direct event
// submission still works; only the analyze paths need a classifier.
var ErrDisabled = errors.New("classifier not configured")

// HTTPClient calls a sidecar inference service:
//
//	POST {base}/classify/text  {"text": ...}        -> {"emotion", "confidence"}
//	POST {base}/classify/audio  <wav bytes>          -> {"emotion", "confidence"}
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the inference service at baseURL.
// A zero timeout defaults to 30 seconds (audio inference is slow).
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ClassifyText(ctx context.Context, text string) (Prediction, error) {
	if c.baseURL == "" {
		return Prediction{}, ErrDisabled
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode text payload: %w", err)
	}
	return c.post(ctx, "/classify/text", "application/json", bytes.NewReader(payload))
}

func (c *HTTPClient) ClassifyAudio(ctx context.Context, filename string, wav []byte) (Prediction, error) {
	if c.baseURL == "" {
		return Prediction{}, ErrDisabled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify/audio", bytes.NewReader(wav))
	if err != nil {
		return Prediction{}, fmt.Errorf("build audio request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	if filename != "" {
		req.Header.Set("X-Origin-Label", filename)
	}
	return c.do(req)
}

func (c *HTTPClient) post(ctx context.Context, path, contentType string, body io.Reader) (Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return Prediction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (Prediction, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Prediction{}, fmt.Errorf("classifier status %d: %s", resp.StatusCode, msg)
	}

	var p Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Prediction{}, fmt.Errorf("decode classifier response: %w", err)
	}
	return p, nil
}
