package audit

import (
	"context"

	"github.com/nerrad567/lookingglass/internal/lookingglass"
)

// Recorder stores every engine execution in a Repository.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a Recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// ObserveExecution implements lookingglass.Observer.
func (r *Recorder) ObserveExecution(ctx context.Context, exec lookingglass.Execution) error {
	outcome := OutcomeSuccess
	if !exec.Succeeded() {
		outcome = string(exec.Kind)
	}
	return r.repo.Create(ctx, &Entry{
		Device:      exec.Device,
		CommandID:   exec.CommandID,
		Rendered:    exec.Rendered,
		Driver:      exec.Driver,
		Outcome:     outcome,
		Message:     exec.Message,
		OutputBytes: exec.OutputBytes,
		DurationMS:  exec.Duration.Milliseconds(),
		StartedAt:   exec.StartedAt,
	})
}
