package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Params are the connection parameters for one device.
type Params struct {
	Hostname string
	Username string
	Password string

	// Settings carries driver-specific options from the inventory
	// (for example "port").
	Settings map[string]any
}

// String returns a description with credentials redacted.
func (p Params) String() string {
	return fmt.Sprintf("%s@%s", redact(p.Username), p.Hostname)
}

// LogValue implements slog.LogValuer so credentials never reach a log.
func (p Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("hostname", p.Hostname),
		slog.String("username", redact(p.Username)),
		slog.String("password", redact(p.Password)),
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}

// Session runs commands against one connected device.
//
// Run returns the raw driver output: a string, a map of command to text, a
// list of lines, or any other value that Normalise can stringify.
type Session interface {
	Run(ctx context.Context, command string) (any, error)
	Close() error
}

// Driver opens sessions for one driver kind.
type Driver interface {
	Open(ctx context.Context, params Params) (Session, error)
}

// Func adapts a function to the Driver interface.
type Func func(ctx context.Context, params Params) (Session, error)

// Open calls f.
func (f Func) Open(ctx context.Context, params Params) (Session, error) {
	return f(ctx, params)
}

// Table maps driver kinds to drivers. It is built once and read-only
// afterwards, so Open is safe for concurrent use.
type Table struct {
	drivers map[string]Driver
}

// NewTable creates a table from kind → driver. Nil drivers are skipped.
func NewTable(drivers map[string]Driver) *Table {
	t := &Table{drivers: make(map[string]Driver, len(drivers))}
	for kind, d := range drivers {
		if d != nil {
			t.drivers[kind] = d
		}
	}
	return t
}

// Open opens a session with the driver registered for kind.
func (t *Table) Open(ctx context.Context, kind string, params Params) (Session, error) {
	d, ok := t.drivers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, kind)
	}
	return d.Open(ctx, params)
}

// Kinds returns the registered driver kinds in lexical order.
func (t *Table) Kinds() []string {
	kinds := make([]string, 0, len(t.drivers))
	for k := range t.drivers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
