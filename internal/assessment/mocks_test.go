package assessment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type fakeGenerator struct {
	GenerateFunc func(ctx context.Context, req GenerateRequest) (string, error)

	calls int32
	mu    sync.Mutex
	last  GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.GenerateFunc != nil {
		return f.GenerateFunc(ctx, req)
	}
	return "", errors.New("GenerateFunc not set")
}

func (f *fakeGenerator) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

func (f *fakeGenerator) Last() GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func replying(text string) *fakeGenerator {
	return &fakeGenerator{GenerateFunc: func(context.Context, GenerateRequest) (string, error) {
		return text, nil
	}}
}

type failingStore struct{ err error }

func (f failingStore) Append(context.Context, string, Result) error { return f.err }

func (f failingStore) ListByUser(context.Context, string) ([]Result, error) { return nil, f.err }

const validReply = `{
	"mentalScore": 40,
	"physicalScore": 35,
	"overallRisk": 38,
	"level": "MEDIUM",
	"route": "SELF_CARE",
	"reasoning": "Mild stress with minor symptoms.",
	"recommendations": ["Rest", "Hydrate", "Track symptoms"]
}`

func testClient(gen Generator) *Client {
	c := NewClient(gen, ClientConfig{APIKey: "test-key", Model: "test-model", Timeout: time.Second}, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return c
}
