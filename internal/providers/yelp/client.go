package yelp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
	"github.com/sandevgo/venuebot/pkg/retry"
)

// Client wraps the Fusion business search API. Transient upstream failures
// retry with backoff here, inside the worker, so the orchestrator's own
// retry budget is spent only on worker-level faults.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	retrier *retry.Retrier
}

func NewClient(cfg config.YelpConfig) *Client {
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		retrier: retry.NewDefaultRetrier(),
	}
}

// Search runs a business search. Parameters are clamped into valid ranges
// first; location is the only hard requirement.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if strings.TrimSpace(params.Location) == "" {
		return nil, core.NewFailure(core.FailureInvalidParams, "location is required")
	}
	params.normalize()

	query := url.Values{}
	query.Set("location", params.Location)
	query.Set("limit", strconv.Itoa(params.Limit))
	if params.Term != "" {
		query.Set("term", params.Term)
	}
	if len(params.Categories) > 0 {
		query.Set("categories", strings.Join(params.Categories, ","))
	}
	if len(params.Price) > 0 {
		prices := make([]string, 0, len(params.Price))
		for _, p := range params.Price {
			prices = append(prices, strconv.Itoa(p))
		}
		query.Set("price", strings.Join(prices, ","))
	}
	if params.Radius > 0 {
		query.Set("radius", strconv.Itoa(params.Radius))
	}
	if params.SortBy != "" {
		query.Set("sort_by", params.SortBy)
	}
	if params.OpenNow {
		query.Set("open_now", "true")
	}

	var result *SearchResult
	err := c.retrier.DoIf(ctx, func() error {
		res, opErr := c.doSearch(ctx, query)
		if opErr != nil {
			return opErr
		}
		result = res
		return nil
	}, core.IsRetryable)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("location", params.Location).Msg("venue search failed")
		return nil, err
	}
	return result, nil
}

func (c *Client) doSearch(ctx context.Context, query url.Values) (*SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/businesses/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.NewFailure(core.FailureTimeout, err.Error())
		}
		if errors.Is(err, context.Canceled) {
			return nil, core.NewFailure(core.FailureCancelled, err.Error())
		}
		return nil, core.NewFailure(core.FailureUnavailable, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewFailure(core.FailureUnavailable, fmt.Sprintf("read body: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, data)
	}

	var raw rawSearchResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.NewFailure(core.FailureInternal, fmt.Sprintf("decode: %v", err))
	}

	trimmed := raw.trim()
	return &trimmed, nil
}

// classifyStatus follows the upstream's error taxonomy: 401 means the key is
// bad and retrying is pointless, 429 backs off, 400 is the caller's fault,
// 5xx is worth another attempt.
func classifyStatus(status int, body []byte) *core.Failure {
	msg := upstreamMessage(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.NewFailure(core.FailureInternal, fmt.Sprintf("authentication rejected: %s", msg))
	case status == http.StatusTooManyRequests:
		return core.NewFailure(core.FailureRateLimited, msg)
	case status == http.StatusBadRequest:
		return core.NewFailure(core.FailureInvalidParams, msg)
	case status >= 500:
		return core.NewFailure(core.FailureUnavailable, fmt.Sprintf("http %d: %s", status, msg))
	default:
		return core.NewFailure(core.FailureInternal, fmt.Sprintf("http %d: %s", status, msg))
	}
}

func upstreamMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Description != "" {
		return envelope.Error.Description
	}
	return string(body)
}
