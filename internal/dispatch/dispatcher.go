package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
	"github.com/sandevgo/venuebot/pkg/retry"
)

// Dispatcher routes structured tool requests to the worker: correlation ids,
// a concurrency cap, per-attempt timeouts, and bounded retries on transient
// failures.
type Dispatcher struct {
	caller  core.ToolCaller
	cfg     config.DispatcherConfig
	retrier *retry.Retrier
	sem     *semaphore.Weighted

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(caller core.ToolCaller, cfg config.DispatcherConfig) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Dispatcher{
		caller: caller,
		cfg:    cfg,
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    cfg.MaxAttempts - 1,
			BackoffFactor: 2.0,
			InitialDelay:  cfg.BackoffBase,
			MaxDelay:      cfg.BackoffCap,
			Jitter:        cfg.BackoffBase / 10,
		}),
		sem:      semaphore.NewWeighted(cfg.Concurrency),
		inflight: make(map[string]struct{}),
	}
}

// NextID mints a fresh correlation id.
func (d *Dispatcher) NextID() string {
	return uuid.NewString()
}

// Invoke executes one tool request. The returned error is non-nil only for
// correlation-id reuse and exhausted retries; classified call failures come
// back embedded in the response with a nil error.
func (d *Dispatcher) Invoke(ctx context.Context, req core.ToolRequest) (core.ToolResponse, error) {
	if req.ID == "" {
		req.ID = d.NextID()
	}

	if err := d.claim(req.ID); err != nil {
		return core.ToolResponse{ID: req.ID}, err
	}
	defer d.release(req.ID)

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return core.ToolResponse{
			ID:      req.ID,
			Failure: core.NewFailure(core.FailureCancelled, "cancelled while queued"),
		}, ctx.Err()
	}
	defer d.sem.Release(1)

	var result string
	attempt := 0
	err := d.retrier.DoIf(ctx, func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
		defer cancel()

		out, callErr := d.caller.Call(callCtx, req.Method, req.Params)
		if callErr != nil {
			if ctx.Err() != nil {
				return core.NewFailure(core.FailureCancelled, ctx.Err().Error())
			}
			if errors.Is(callErr, context.DeadlineExceeded) {
				return core.NewFailure(core.FailureTimeout,
					fmt.Sprintf("%s timed out after %s", req.Method, d.cfg.RequestTimeout))
			}
			return callErr
		}
		result = out
		return nil
	}, core.IsRetryable)

	if err == nil {
		return core.ToolResponse{ID: req.ID, Result: result}, nil
	}

	if ctx.Err() != nil {
		return core.ToolResponse{
			ID:      req.ID,
			Failure: core.NewFailure(core.FailureCancelled, ctx.Err().Error()),
		}, ctx.Err()
	}

	failure := core.AsFailure(err)
	if failure.Kind.Retryable() {
		log.FromCtx(ctx).Warn().
			Str("id", req.ID).
			Str("method", req.Method).
			Int("attempts", attempt).
			Str("kind", string(failure.Kind)).
			Msg("tool retries exhausted")
		return core.ToolResponse{ID: req.ID, Failure: failure},
			fmt.Errorf("%w: %s after %d attempts", core.ErrToolUnavailable, req.Method, attempt)
	}

	// Non-retryable failures are an answer, not an error: the reasoning
	// layer gets to see them and react.
	return core.ToolResponse{ID: req.ID, Failure: failure}, nil
}

// InvokeBatch executes requests concurrently under the dispatcher's cap and
// returns responses in request order, one per request. Every outcome,
// including exhausted retries, is embedded as a response.
func (d *Dispatcher) InvokeBatch(ctx context.Context, reqs []core.ToolRequest) []core.ToolResponse {
	responses := make([]core.ToolResponse, len(reqs))

	var wg sync.WaitGroup
	for i := range reqs {
		if reqs[i].ID == "" {
			reqs[i].ID = d.NextID()
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := d.Invoke(ctx, reqs[i])
			if err != nil && resp.Failure == nil {
				if errors.Is(err, core.ErrDuplicateRequest) {
					resp.Failure = core.NewFailure(core.FailureMalformed, err.Error())
				} else {
					resp.Failure = core.AsFailure(err)
				}
			}
			responses[i] = resp
		}(i)
	}
	wg.Wait()

	return responses
}

func (d *Dispatcher) claim(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.inflight[id]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateRequest, id)
	}
	d.inflight[id] = struct{}{}
	return nil
}

func (d *Dispatcher) release(id string) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}
