// Package llm provides the Ollama LLM adapter.
// It owns timeout and retry discipline for backend calls and classifies
// every failure into a typed entities.BackendError.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
	"github.com/helpwise/faqdesk-go/internal/metrics"
)

// Options configures the Ollama adapter. Zero fields fall back to defaults.
type Options struct {
	BaseURL        string
	Model          string
	Timeout        time.Duration // per-attempt request timeout
	MaxAttempts    int           // total attempts including the first
	RetryPause     time.Duration // pause between transient-failure retries
	OverallTimeout time.Duration // bounds total time across all attempts
	Temperature    float64
	MaxTokens      int
}

// OllamaAdapter implements ports.LLMService against the Ollama generate API.
type OllamaAdapter struct {
	opts   Options
	client *http.Client
	logger *zap.Logger
}

// NewOllamaAdapter creates a new Ollama adapter.
func NewOllamaAdapter(opts Options, logger *zap.Logger) *OllamaAdapter {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:11434"
	}
	if opts.Model == "" {
		opts.Model = "mistral"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryPause <= 0 {
		opts.RetryPause = time.Second
	}
	if opts.OverallTimeout <= 0 {
		opts.OverallTimeout = opts.Timeout*time.Duration(opts.MaxAttempts) + 5*time.Second
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 300
	}
	return &OllamaAdapter{
		opts:   opts,
		logger: logger,
		// Per-attempt timeouts come from the request context, not the client.
		client: &http.Client{},
	}
}

// Model returns the configured backend model identifier.
func (a *OllamaAdapter) Model() string { return a.opts.Model }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Generate sends the prompt to Ollama, retrying transient failures with the
// same prompt up to the attempt budget. Exhaustion surfaces the last failure
// as-is; non-transient failures return immediately.
func (a *OllamaAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.OverallTimeout)
	defer cancel()

	var lastErr *entities.BackendError
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		metrics.BackendAttempts.Inc()

		answer, err := a.generateOnce(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		metrics.BackendFailures.WithLabelValues(string(err.Kind)).Inc()

		if !err.Kind.Transient() || attempt == a.opts.MaxAttempts {
			break
		}
		a.logger.Warn("transient backend failure, retrying",
			zap.String("kind", string(err.Kind)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", a.opts.MaxAttempts))

		select {
		case <-ctx.Done():
			return "", lastErr
		case <-time.After(a.opts.RetryPause):
		}
	}
	return "", lastErr
}

// generateOnce issues a single generation request and classifies its outcome.
func (a *OllamaAdapter) generateOnce(ctx context.Context, prompt string) (string, *entities.BackendError) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:  a.opts.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: a.opts.Temperature,
			NumPredict:  a.opts.MaxTokens,
		},
	})
	if err != nil {
		return "", &entities.BackendError{Kind: entities.FailureUnknown, Detail: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, a.opts.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &entities.BackendError{Kind: entities.FailureUnknown, Detail: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// A definite backend answer (e.g. unknown model name) is a fatal
		// misconfiguration, never masked by retries.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &entities.BackendError{
			Kind:   entities.FailureUnknown,
			Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))),
		}
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return "", &entities.BackendError{Kind: entities.FailureMalformed, Detail: "undecodable response body", Err: err}
	}
	if gen.Response == nil {
		return "", &entities.BackendError{Kind: entities.FailureMalformed, Detail: "response field missing"}
	}
	answer := trimArtifacts(*gen.Response)
	if answer == "" {
		return "", &entities.BackendError{Kind: entities.FailureMalformed, Detail: "empty generated text"}
	}
	return answer, nil
}

// classifyTransport maps a transport error to a typed failure. Nothing
// escapes unclassified: unrecognized errors become FailureUnknown.
func classifyTransport(err error) *entities.BackendError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &entities.BackendError{Kind: entities.FailureTimeout, Detail: "request deadline exceeded", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &entities.BackendError{Kind: entities.FailureUnknown, Detail: "request canceled", Err: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return &entities.BackendError{Kind: entities.FailureTimeout, Detail: "request timed out", Err: err}
		}
		return &entities.BackendError{Kind: entities.FailureUnreachable, Detail: "backend unreachable", Err: err}
	}
	return &entities.BackendError{Kind: entities.FailureUnknown, Detail: "transport error", Err: err}
}

// trimArtifacts strips whitespace and a leading role label the model
// sometimes echoes back.
func trimArtifacts(text string) string {
	text = strings.TrimSpace(text)
	for _, label := range []string{"Answer:", "A:", "Assistant:"} {
		if strings.HasPrefix(text, label) {
			text = strings.TrimSpace(strings.TrimPrefix(text, label))
			break
		}
	}
	return text
}

// CheckConnection reports whether the Ollama endpoint responds at all.
// Used at startup for operator feedback only.
func (a *OllamaAdapter) CheckConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.BaseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// CheckModelAvailable reports whether the configured model is pulled.
func (a *OllamaAdapter) CheckModelAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	base := strings.SplitN(a.opts.Model, ":", 2)[0]
	for _, m := range tags.Models {
		if strings.Contains(m.Name, base) {
			return true
		}
	}
	return false
}
