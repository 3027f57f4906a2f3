package agents

import (
	"context"
	"encoding/json"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	aitypes "github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// stubModel is a scripted LanguageModel for router and dispatcher tests.
type stubModel struct {
	objectFn func(ctx context.Context, req provider.ObjectRequest) (json.RawMessage, error)
	streamFn func(ctx context.Context, req provider.GenerateRequest) (<-chan aitypes.StreamEvent, <-chan error)

	lastObjectRequest   *provider.ObjectRequest
	lastGenerateRequest *provider.GenerateRequest
}

func (m *stubModel) ID() string {
	return "stub"
}

func (m *stubModel) Generate(ctx context.Context, req provider.GenerateRequest) (*aitypes.GenerateResponse, error) {
	m.lastGenerateRequest = &req
	return &aitypes.GenerateResponse{}, nil
}

func (m *stubModel) Stream(ctx context.Context, req provider.GenerateRequest) (<-chan aitypes.StreamEvent, <-chan error) {
	m.lastGenerateRequest = &req
	return m.streamFn(ctx, req)
}

func (m *stubModel) GenerateObject(ctx context.Context, req provider.ObjectRequest) (json.RawMessage, error) {
	m.lastObjectRequest = &req
	return m.objectFn(ctx, req)
}

// textStream scripts a single-step stream that emits the given deltas and
// finishes cleanly.
func textStream(deltas ...string) func(ctx context.Context, req provider.GenerateRequest) (<-chan aitypes.StreamEvent, <-chan error) {
	return func(ctx context.Context, req provider.GenerateRequest) (<-chan aitypes.StreamEvent, <-chan error) {
		events := make(chan aitypes.StreamEvent)
		errs := make(chan error, 1)

		go func() {
			defer close(events)
			defer close(errs)

			for _, delta := range deltas {
				select {
				case events <- aitypes.NewTextDeltaEvent(delta):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}()

		return events, errs
	}
}
