package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultOllamaTimeout = 30 * time.Second

// OllamaClient implements Client against Ollama's generate endpoint.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewOllamaClient creates an Ollama completion client with a fixed request
// timeout. A zero timeout selects the default.
func NewOllamaClient(baseURL, model string, timeout time.Duration, log *slog.Logger) *OllamaClient {
	if timeout == 0 {
		timeout = defaultOllamaTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &OllamaClient{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Complete sends a single prompt to Ollama and returns the raw response text.
// Network-level failures wrap ErrConnectivity; HTTP-level and service-level
// errors do not, since the service answered.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	b, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("ollama request failed", "model", c.model, "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrConnectivity, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 500 {
			msg = msg[:500] + "..."
		}
		return "", fmt.Errorf("ollama http %d: %s", resp.StatusCode, msg)
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}

	c.log.Debug("ollama completion", "model", c.model, "duration", time.Since(start), "promptLen", len(prompt), "responseLen", len(out.Response))
	return out.Response, nil
}

// HealthCheck reports whether the Ollama service is reachable and responding.
func (c *OllamaClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
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
