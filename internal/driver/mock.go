package driver

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a driver that answers from a fixed table of canned outputs.
// It never touches the network.
type Mock struct {
	responses map[string]any
}

// NewMock creates a mock driver. responses maps a full command string to
// its output; commands not in the table get a generated line.
func NewMock(responses map[string]any) *Mock {
	m := &Mock{responses: make(map[string]any, len(responses))}
	for k, v := range responses {
		m.responses[k] = v
	}
	return m
}

// Open returns a session for params.
func (m *Mock) Open(_ context.Context, params Params) (Session, error) {
	return &mockSession{responses: m.responses, host: params.Hostname}, nil
}

type mockSession struct {
	responses map[string]any
	host      string

	mu     sync.Mutex
	closed bool
}

func (s *mockSession) Run(ctx context.Context, command string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", ErrCommandFailed)
	}

	if out, ok := s.responses[command]; ok {
		return out, nil
	}
	return fmt.Sprintf("%s# %s\n(mock output)", s.host, command), nil
}

func (s *mockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
