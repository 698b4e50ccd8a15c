// Package remote implements the remote embedding client (C3): a thin HTTP
// POST to a caller-configured embeddings endpoint, returning a single
// float vector.
//
// The endpoint shape (POST {model, input} -> {data:[{embedding}]}) is the
// de-facto OpenAI wire format that most self-hosted embedding gateways
// mirror, but config.APIURL is a full, caller-supplied endpoint rather
// than an SDK base URL, so this client talks net/http directly instead of
// going through an OpenAI-flavored SDK client that would impose its own
// path-joining conventions.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

const (
	connectTimeout = 30 * time.Second
	readTimeout    = 60 * time.Second
	writeTimeout   = 30 * time.Second
)

// Client embeds text via a remote HTTP endpoint. It never retries.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a Client whose overall request deadline is bounded by
// the sum of the spec's per-phase timeouts (connect/write on the request
// side, read on the response side); net/http does not expose those phases
// independently, so the client Timeout is set to their sum and callers
// additionally pass a context for finer-grained cancellation.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   &http.Client{Timeout: connectTimeout + writeTimeout + readTimeout},
		logger: logger.With("component", "remote-embedding-client"),
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed POSTs text to config.APIURL and returns the first embedding in the
// response. It returns (nil, false) on any failure: missing config field,
// transport error, non-2xx status, empty body, malformed JSON, or an empty
// data array. Failures are logged at warning level and never returned as
// an error, matching the "optional vector" contract callers rely on for
// per-call fallback.
func (c *Client) Embed(ctx context.Context, text string, config models.EmbeddingConfig) ([]float32, bool) {
	if !config.Valid() {
		c.logger.Warn("remote embedding config incomplete")
		return nil, false
	}

	body, err := json.Marshal(embedRequest{Model: config.Model, Input: text})
	if err != nil {
		c.logger.Warn("remote embedding request marshal failed", "error", err)
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.APIURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("remote embedding request build failed", "error", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote embedding request failed", "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("remote embedding response read failed", "error", err)
		return nil, false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("remote embedding non-2xx status", "status", resp.StatusCode, "body", truncate(string(respBody), 256))
		return nil, false
	}
	if len(respBody) == 0 {
		c.logger.Warn("remote embedding empty response body")
		return nil, false
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.Warn("remote embedding response malformed", "error", err)
		return nil, false
	}
	if len(parsed.Data) == 0 {
		c.logger.Warn("remote embedding response had no data")
		return nil, false
	}

	return parsed.Data[0].Embedding, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + fmt.Sprintf("...(%d more bytes)", len(s)-n)
}
