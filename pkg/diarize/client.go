// Package diarize talks to the speaker diarization microservice and merges
// its labels back onto transcript segments. The service is best-effort: every
// failure path degrades to single-speaker labeling, never to an error.
package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Boundary is what the diarizer receives per segment: timing and text only,
// no speaker information.
type Boundary struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type ResponseSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

type Response struct {
	Speakers    []string          `json:"speakers"`
	Segments    []ResponseSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
}

type Client interface {
	// Healthy gates every diarize call; an unreachable service means the
	// caller should go straight to the fallback result.
	Healthy(ctx context.Context) bool
	Diarize(ctx context.Context, audio io.Reader, filename string, boundaries []Boundary, embedding []float64) (*Response, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *client) Healthy(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *client) Diarize(ctx context.Context, audio io.Reader, filename string, boundaries []Boundary, embedding []float64) (*Response, error) {
	var body io.Reader
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	body = pr

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, audio); err != nil {
			pw.CloseWithError(err)
			return
		}

		segJSON, err := json.Marshal(boundaries)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("segments", string(segJSON)); err != nil {
			pw.CloseWithError(err)
			return
		}

		if len(embedding) > 0 {
			embJSON, err := json.Marshal(embedding)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if err := writer.WriteField("user_embedding", string(embJSON)); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/diarize", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization service: status %d", resp.StatusCode)
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
