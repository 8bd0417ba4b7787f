package mqtt

import (
	"context"
	"time"

	"github.com/nerrad567/lookingglass/internal/lookingglass"
)

// ExecutionEvent is the payload published for every finished execution.
type ExecutionEvent struct {
	Device      string `json:"device"`
	Command     string `json:"command"`
	Rendered    string `json:"rendered,omitempty"`
	Driver      string `json:"driver,omitempty"`
	Success     bool   `json:"success"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Message     string `json:"message,omitempty"`
	OutputBytes int    `json:"output_bytes"`
	DurationMS  int64  `json:"duration_ms"`
	StartedAt   string `json:"started_at"`
}

// NewExecutionEvent converts an engine execution to its wire form.
func NewExecutionEvent(exec lookingglass.Execution) ExecutionEvent {
	return ExecutionEvent{
		Device:      exec.Device,
		Command:     exec.CommandID,
		Rendered:    exec.Rendered,
		Driver:      exec.Driver,
		Success:     exec.Succeeded(),
		ErrorKind:   string(exec.Kind),
		Message:     exec.Message,
		OutputBytes: exec.OutputBytes,
		DurationMS:  exec.Duration.Milliseconds(),
		StartedAt:   exec.StartedAt.UTC().Format(time.RFC3339Nano),
	}
}

// eventPublisher is satisfied by *Client.
type eventPublisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// ExecutionPublisher publishes engine executions. It implements
// lookingglass.Observer.
type ExecutionPublisher struct {
	pub eventPublisher
}

// NewExecutionPublisher creates an ExecutionPublisher over client.
func NewExecutionPublisher(client *Client) *ExecutionPublisher {
	return &ExecutionPublisher{pub: client}
}

// ObserveExecution publishes exec to lookingglass/execution/{device}.
func (p *ExecutionPublisher) ObserveExecution(_ context.Context, exec lookingglass.Execution) error {
	return p.pub.PublishJSON(Topics{}.Execution(exec.Device), NewExecutionEvent(exec), false)
}
