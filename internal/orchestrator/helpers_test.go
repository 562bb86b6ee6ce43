package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/publisher"
)

// stubAdapter is a scriptable platform adapter. The publish func receives
// the 1-based call number so tests can fail the first n attempts.
type stubAdapter struct {
	name    string
	mu      sync.Mutex
	calls   int
	publish func(call int) (*publisher.Result, error)
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Publish(ctx context.Context, content publisher.Content, opts publisher.Options) (*publisher.Result, error) {
	a.mu.Lock()
	a.calls++
	call := a.calls
	a.mu.Unlock()

	if a.publish != nil {
		return a.publish(call)
	}
	return &publisher.Result{
		Success:           true,
		PlatformContentID: fmt.Sprintf("%s-%d", a.name, call),
		URL:               "https://" + a.name + ".example.com/post",
		PublishedAt:       time.Now(),
	}, nil
}

func (a *stubAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type stubRegistry struct {
	adapters map[string]publisher.Publisher
}

func newStubRegistry(adapters ...*stubAdapter) *stubRegistry {
	reg := &stubRegistry{adapters: make(map[string]publisher.Publisher)}
	for _, a := range adapters {
		reg.adapters[a.name] = a
	}
	return reg
}

func (r *stubRegistry) Resolve(platform string) (publisher.Publisher, error) {
	adapter, ok := r.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	return adapter, nil
}

// newTestOrchestrator builds an orchestrator with a controllable clock. The
// returned advance func moves the clock forward between ticks.
func newTestOrchestrator(cfg Config, registry AdapterRegistry) (*Orchestrator, func(d time.Duration)) {
	o := New(cfg, registry, zap.NewNop())

	var mu sync.Mutex
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	advance := func(d time.Duration) {
		mu.Lock()
		current = current.Add(d)
		mu.Unlock()
	}
	return o, advance
}

func testTarget(platform string, priority int) PlatformTarget {
	return PlatformTarget{
		Platform:    platform,
		Credentials: map[string]string{"token": "secret"},
		Priority:    priority,
	}
}

func testRequest(id string, targets ...PlatformTarget) BulkPublishRequest {
	return BulkPublishRequest{
		ID: id,
		Content: publisher.Content{
			ID:    "content-1",
			Title: "Ten SEO Tips",
			Body:  "<p>Content body</p>",
		},
		Platforms: targets,
	}
}

// drainEvents empties the notification channel and returns the event types
// seen, in order.
func drainEvents(o *Orchestrator) []EventType {
	var types []EventType
	for {
		select {
		case ev := <-o.Events():
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}
