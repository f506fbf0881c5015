package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/venuebot/internal/core"
)

type baseClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func newBaseClient(baseURL, apiKey, model string, timeout time.Duration) baseClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return baseClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (b *baseClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return resp, nil
}

// classifyTransportError maps network-level failures onto the shared failure
// taxonomy so the retry layer can tell transient from terminal.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewFailure(core.FailureTimeout, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return core.NewFailure(core.FailureCancelled, err.Error())
	}
	return core.NewFailure(core.FailureUnavailable, err.Error())
}

// classifyStatus maps HTTP status codes onto failure kinds. 429 backs off,
// 5xx retries, everything else in the 4xx range is a terminal request fault.
func classifyStatus(status int, body string) *core.Failure {
	switch {
	case status == http.StatusTooManyRequests:
		return core.NewFailure(core.FailureRateLimited, fmt.Sprintf("http 429: %s", body))
	case status >= 500:
		return core.NewFailure(core.FailureUnavailable, fmt.Sprintf("http %d: %s", status, body))
	default:
		return core.NewFailure(core.FailureMalformed, fmt.Sprintf("http %d: %s", status, body))
	}
}
