package lookingglass

import (
	"time"

	"github.com/nerrad567/lookingglass/internal/command"
)

// Request asks for one command to run on one device.
type Request struct {
	Device  string
	Command string

	// Variables may be flat (name → value) or bracket-form
	// ("variables[name]" → value). See NormaliseVariables.
	Variables map[string]string
}

// Result is the outcome of Execute. Exactly one of Output and Error is
// meaningful: Error is nil on success.
type Result struct {
	Output string
	Error  *Error
}

// OK reports whether the command ran.
func (r Result) OK() bool {
	return r.Error == nil
}

// DeviceSummary is the display form of a device. It never carries
// credentials.
type DeviceSummary struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Driver string `json:"driver"`
}

// Execution describes one finished Execute call for observers.
type Execution struct {
	Device    string
	CommandID string

	// Rendered is the command line sent to the device; empty when Execute
	// failed before rendering.
	Rendered string
	Driver   string

	// Kind is empty on success.
	Kind        ErrorKind
	Message     string
	StartedAt   time.Time
	Duration    time.Duration
	OutputBytes int
}

// Succeeded reports whether the execution produced output.
func (e Execution) Succeeded() bool {
	return e.Kind == ""
}

// AllowedCommands maps command ID to its catalog entry.
type AllowedCommands map[string]command.Spec
