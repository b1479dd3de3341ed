// Package transcription wraps the hosted speech-to-text provider. The
// provider fetches audio by URL, so the worker never proxies the bytes.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// Segment is one time-aligned slice of provider output. Speaker labels are
// never requested here; diarization is this system's own stage.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Result struct {
	Text            string
	Language        string
	Segments        []Segment
	DurationSeconds float64
}

type Client interface {
	Transcribe(ctx context.Context, audioURL string) (*Result, error)
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type transcribeRequest struct {
	AudioURL   string `json:"audio_url"`
	Punctuate  bool   `json:"punctuate"`
	Diarize    bool   `json:"diarize"`
	Timestamps bool   `json:"timestamps"`
}

type transcribeResponse struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
	Error    string    `json:"error,omitempty"`
}

func (c *client) Transcribe(ctx context.Context, audioURL string) (*Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("transcription provider not configured")
	}

	reqBody, err := json.Marshal(transcribeRequest{
		AudioURL:   audioURL,
		Punctuate:  true,
		Diarize:    false,
		Timestamps: true,
	})
	if err != nil {
		return nil, err
	}

	operation := func() (*transcribeResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transcribe", bytes.NewReader(reqBody))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("transcription request failed, retrying")
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("transcription provider error: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("transcription rejected: status %d", resp.StatusCode))
		}

		var parsed transcribeResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("malformed transcription response: %w", err))
		}
		if parsed.Error != "" {
			return nil, fmt.Errorf("transcription provider error: %s", parsed.Error)
		}
		return &parsed, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 10 * time.Second
	parsed, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3))
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:            parsed.Text,
		Language:        parsed.Language,
		Segments:        parsed.Segments,
		DurationSeconds: parsed.Duration,
	}, nil
}
