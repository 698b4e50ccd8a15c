// Package llm implements the streaming LLM client (C4): a single state
// machine (Idle/Loading/Streaming/Success/Error) fed by one of three
// provider dialects — OpenAI-compatible, Anthropic, and DashScope — each
// consumed over server-sent events.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oakbridge-labs/studyrag/internal/metrics"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// dialect streams one completion request, invoking emit for each non-empty
// text delta in arrival order, and returns the full accumulated text.
// Implementations must stop promptly when ctx is cancelled.
type dialect interface {
	stream(ctx context.Context, req streamRequest, emit func(delta string)) (full string, err error)
}

type streamRequest struct {
	provider     models.Provider
	systemPrompt string
	history      []models.LLMMessage
	message      models.LLMMessage
}

// Client is one LLM request/response lifecycle, per spec §3: "A
// ResponseState stream is owned by one LLM client instance and reset
// between requests; no two requests share an instance concurrently."
// The zero value is not usable; construct with NewClient.
type Client struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu           sync.Mutex
	systemPrompt string
	busy         bool
	cancel       context.CancelFunc

	observer *stateObserver
}

// NewClient constructs an idle Client. m may be nil, in which case request
// instrumentation is skipped.
func NewClient(logger *slog.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		logger:   logger.With("component", "llm-client"),
		metrics:  m,
		observer: newStateObserver(),
	}
}

// SetSystemPrompt configures the system message prepended to every
// subsequent request.
func (c *Client) SetSystemPrompt(prompt string) {
	c.mu.Lock()
	c.systemPrompt = prompt
	c.mu.Unlock()
}

// Subscribe returns a channel of ResponseState updates, pre-loaded with
// the current state. Callers must eventually call Unsubscribe.
func (c *Client) Subscribe() chan models.ResponseState {
	return c.observer.Subscribe()
}

// Unsubscribe stops delivery to a channel returned by Subscribe.
func (c *Client) Unsubscribe(ch chan models.ResponseState) {
	c.observer.Unsubscribe(ch)
}

// ResponseState reports the current state without subscribing.
func (c *Client) ResponseState() models.ResponseState {
	return c.observer.Latest()
}

// SendMessage begins a request. It is only valid to call while the current
// state is Idle or terminal (Success/Error); calling it while
// Loading/Streaming returns an error and starts nothing. The request runs
// in its own goroutine; SendMessage returns as soon as it has been
// accepted and the state has transitioned to Loading.
func (c *Client) SendMessage(ctx context.Context, message models.LLMMessage, history []models.LLMMessage, provider models.Provider) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return fmt.Errorf("llm client: request already in progress")
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.busy = true
	c.cancel = cancel
	systemPrompt := c.systemPrompt
	c.mu.Unlock()

	c.observer.publish(models.Loading())

	d, err := dialectFor(provider.Kind)
	if err != nil {
		c.finish()
		c.observer.publish(models.Error(err.Error()))
		return nil
	}

	req := streamRequest{
		provider:     provider,
		systemPrompt: systemPrompt,
		history:      history,
		message:      message,
	}

	go c.run(reqCtx, d, req)
	return nil
}

func (c *Client) run(ctx context.Context, d dialect, req streamRequest) {
	defer c.finish()
	start := time.Now()
	recordOutcome := func(status string) {
		c.metrics.RecordLLMRequest(string(req.provider.Kind), req.provider.Model, status, time.Since(start))
	}

	var accumulated string
	full, err := d.stream(ctx, req, func(delta string) {
		if delta == "" {
			return
		}
		accumulated += delta
		c.observer.publish(models.Streaming(delta, accumulated))
	})

	if ctx.Err() != nil {
		// Cancelled: cancelRequest already reset state to Idle; discard
		// any terminal publication so the Idle transition stands.
		return
	}

	if err != nil {
		if accumulated != "" {
			recordOutcome("success")
			c.observer.publish(models.Success(accumulated))
			return
		}
		recordOutcome("error")
		c.logger.Warn("llm stream failed", "error", err)
		c.observer.publish(models.Error(err.Error()))
		return
	}

	if full == "" {
		full = accumulated
	}
	recordOutcome("success")
	c.observer.publish(models.Success(full))
}

// CancelRequest closes the in-flight stream, if any, and resets state to
// Idle without emitting a terminal Success/Error for the cancelled
// request.
func (c *Client) CancelRequest() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.observer.publish(models.Idle())
}

func (c *Client) finish() {
	c.mu.Lock()
	c.busy = false
	c.cancel = nil
	c.mu.Unlock()
}

func dialectFor(kind models.ProviderKind) (dialect, error) {
	switch kind {
	case models.ProviderOpenAIStyle, models.ProviderCustom:
		return openAIStyleDialect{}, nil
	case models.ProviderAnthropic:
		return anthropicDialect{}, nil
	case models.ProviderDashScope:
		return dashScopeDialect{}, nil
	default:
		return nil, fmt.Errorf("llm client: unknown provider kind %q", kind)
	}
}
