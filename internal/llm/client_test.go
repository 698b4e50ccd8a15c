package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// fakeDialect lets tests drive Client.run without any network access.
type fakeDialect struct {
	deltas  []string
	full    string
	err     error
	blockOn chan struct{} // if non-nil, stream blocks until this is closed
}

func (f fakeDialect) stream(ctx context.Context, req streamRequest, emit func(string)) (string, error) {
	if f.blockOn != nil {
		select {
		case <-f.blockOn:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	for _, d := range f.deltas {
		emit(d)
	}
	return f.full, f.err
}

func drainUntilTerminal(t *testing.T, ch chan models.ResponseState) models.ResponseState {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case state := <-ch:
			if state.Kind == models.ResponseSuccess || state.Kind == models.ResponseError {
				return state
			}
		case <-timeout:
			t.Fatal("timed out waiting for terminal state")
		}
	}
}

func sendWithDialect(t *testing.T, c *Client, d dialect) {
	t.Helper()
	c.mu.Lock()
	c.busy = true
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()
	go c.run(ctx, d, streamRequest{message: models.LLMMessage{Content: "hi"}})
}

func TestClient_SuccessAccumulatesDeltasInOrder(t *testing.T) {
	c := NewClient(nil, nil)
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	sendWithDialect(t, c, fakeDialect{deltas: []string{"a", "b", "c"}, full: "abc"})

	var seenDeltas []string
	var terminal models.ResponseState
	for state := range ch {
		if state.Kind == models.ResponseStreaming {
			seenDeltas = append(seenDeltas, state.Delta)
		}
		if state.Kind == models.ResponseSuccess {
			terminal = state
			break
		}
	}
	if terminal.Accumulated != "abc" {
		t.Errorf("accumulated = %q, want %q", terminal.Accumulated, "abc")
	}
	if len(seenDeltas) != 3 || seenDeltas[0] != "a" || seenDeltas[2] != "c" {
		t.Errorf("deltas = %v", seenDeltas)
	}
}

func TestClient_TransportFailureWithAccumulatedTextEmitsSuccess(t *testing.T) {
	c := NewClient(nil, nil)
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	sendWithDialect(t, c, fakeDialect{deltas: []string{"partial"}, err: errors.New("connection reset")})

	state := drainUntilTerminal(t, ch)
	if state.Kind != models.ResponseSuccess {
		t.Fatalf("kind = %v, want Success", state.Kind)
	}
	if state.Accumulated != "partial" {
		t.Errorf("accumulated = %q, want %q", state.Accumulated, "partial")
	}
}

func TestClient_TransportFailureWithNoAccumulatedTextEmitsError(t *testing.T) {
	c := NewClient(nil, nil)
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	sendWithDialect(t, c, fakeDialect{err: errors.New("connection refused")})

	state := drainUntilTerminal(t, ch)
	if state.Kind != models.ResponseError {
		t.Fatalf("kind = %v, want Error", state.Kind)
	}
}

func TestClient_CancelResetsToIdleWithoutTerminalState(t *testing.T) {
	c := NewClient(nil, nil)
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)
	<-ch // discard the preloaded Idle from Subscribe itself

	block := make(chan struct{})
	sendWithDialect(t, c, fakeDialect{blockOn: block})
	c.CancelRequest()

	select {
	case state := <-ch:
		if state.Kind != models.ResponseIdle {
			t.Errorf("kind = %v, want Idle", state.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Idle")
	}
	close(block)
}

func TestClient_UnknownProviderKindEmitsError(t *testing.T) {
	c := NewClient(nil, nil)
	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	err := c.SendMessage(context.Background(), models.LLMMessage{Content: "hi"}, nil, models.Provider{Kind: models.ProviderKind("mystery")})
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}

	state := drainUntilTerminal(t, ch)
	if state.Kind != models.ResponseError {
		t.Fatalf("kind = %v, want Error", state.Kind)
	}
}

func TestClient_RejectsConcurrentSendWhileBusy(t *testing.T) {
	c := NewClient(nil, nil)
	block := make(chan struct{})
	sendWithDialect(t, c, fakeDialect{blockOn: block})

	err := c.SendMessage(context.Background(), models.LLMMessage{Content: "hi"}, nil, models.Provider{Kind: models.ProviderOpenAIStyle})
	if err == nil {
		t.Error("expected error sending while busy")
	}
	close(block)
}
