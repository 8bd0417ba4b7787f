package lookingglass

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/lookingglass/internal/command"
	"github.com/nerrad567/lookingglass/internal/device"
	"github.com/nerrad567/lookingglass/internal/driver"
	"golang.org/x/sync/semaphore"
)

// Logger is the logging interface used by the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Opener opens a device session for a driver kind. *driver.Table satisfies
// it.
type Opener interface {
	Open(ctx context.Context, kind string, params driver.Params) (driver.Session, error)
}

// Observer is notified of every finished Execute call.
type Observer interface {
	ObserveExecution(ctx context.Context, exec Execution) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, exec Execution) error

// ObserveExecution calls f.
func (f ObserverFunc) ObserveExecution(ctx context.Context, exec Execution) error {
	return f(ctx, exec)
}

// Options tune dispatch. The zero value applies no limits.
type Options struct {
	// MaxConcurrentPerDevice caps simultaneous sessions per device.
	// Zero means unlimited.
	MaxConcurrentPerDevice int

	// CommandTimeout bounds one dispatch (open, run, close). Zero means
	// the caller's context alone applies.
	CommandTimeout time.Duration
}

// Engine authorizes and executes looking glass requests.
type Engine struct {
	registry *device.Registry
	catalog  *command.Catalog
	opener   Opener
	opts     Options

	// Built once in New and never modified, so reads need no lock.
	limits map[string]*semaphore.Weighted

	mu        sync.RWMutex
	observers []Observer
	logger    Logger
}

// New creates an engine over a built registry and catalog.
func New(registry *device.Registry, catalog *command.Catalog, opener Opener, opts Options) (*Engine, error) {
	if registry == nil || catalog == nil || opener == nil {
		return nil, fmt.Errorf("lookingglass: registry, catalog and opener are required")
	}

	e := &Engine{
		registry: registry,
		catalog:  catalog,
		opener:   opener,
		opts:     opts,
		logger:   noopLogger{},
	}

	if opts.MaxConcurrentPerDevice > 0 {
		e.limits = make(map[string]*semaphore.Weighted, registry.Count())
		for _, name := range registry.Names() {
			e.limits[name] = semaphore.NewWeighted(int64(opts.MaxConcurrentPerDevice))
		}
	}

	return e, nil
}

// SetLogger sets the logger.
func (e *Engine) SetLogger(logger Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	e.logger = logger
}

// AddObserver registers an observer for execution outcomes.
func (e *Engine) AddObserver(o Observer) {
	if o == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

func (e *Engine) log() Logger {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.logger
}

// ListDevices returns every device in registry order.
func (e *Engine) ListDevices() []DeviceSummary {
	profiles := e.registry.List()
	out := make([]DeviceSummary, len(profiles))
	for i, p := range profiles {
		out[i] = DeviceSummary{Name: p.Name, Group: p.Group, Driver: p.Driver}
	}
	return out
}

// ListAllowedCommands returns the catalog entries the device may run: those
// in its effective allowed set and not in its disallowed set. Commands
// permitted by the device but missing from the catalog are omitted.
func (e *Engine) ListAllowedCommands(deviceName string) (AllowedCommands, error) {
	p, err := e.registry.Get(deviceName)
	if err != nil {
		return nil, newError(KindDeviceNotFound, "Device not found")
	}

	out := make(AllowedCommands)
	for _, id := range p.Permissions.Allowed.Sorted() {
		if !p.Permissions.Permits(id) {
			continue
		}
		if spec, ok := e.catalog.Get(id); ok {
			out[id] = spec
		}
	}
	return out, nil
}

// ListCommands returns every catalog entry ordered by ID.
func (e *Engine) ListCommands() []command.Spec {
	ids := e.catalog.IDs()
	out := make([]command.Spec, 0, len(ids))
	for _, id := range ids {
		if spec, ok := e.catalog.Get(id); ok {
			out = append(out, spec)
		}
	}
	return out
}

// CommandVariables returns the variables a command declares, in order.
func (e *Engine) CommandVariables(commandID string) ([]command.VariableSpec, error) {
	vars, err := e.catalog.Variables(commandID)
	if err != nil {
		return nil, newError(KindCommandNotFound, "Command not found")
	}
	return vars, nil
}
