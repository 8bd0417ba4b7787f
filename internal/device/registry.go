package device

import "fmt"

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the resolved device profiles, in inventory order, with an
// index by name.
//
// A Registry is immutable once built. Reads need no locking and every
// accessor returns copies, so callers cannot alter shared state.
type Registry struct {
	profiles []*Profile
	index    map[string]*Profile
}

// NewRegistry builds a registry from already resolved profiles, keeping
// their order. Each profile is copied. Permissions are stored as given and
// are not re-derived, so callers that assemble profiles by hand own their
// consistency.
//
// Returns ErrInvalidDevice for an unusable name and ErrDuplicateDevice when
// a name repeats.
func NewRegistry(profiles []Profile) (*Registry, error) {
	reg := newRegistry(len(profiles))
	for i := range profiles {
		if err := ValidateName(profiles[i].Name); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if err := reg.add(profiles[i].DeepCopy()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func newRegistry(capacity int) *Registry {
	return &Registry{
		profiles: make([]*Profile, 0, capacity),
		index:    make(map[string]*Profile, capacity),
	}
}

// add appends p. Only used while a registry is being built.
func (r *Registry) add(p *Profile) error {
	if _, exists := r.index[p.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDevice, p.Name)
	}
	r.profiles = append(r.profiles, p)
	r.index[p.Name] = p
	return nil
}

// Get returns the profile for a device name.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) Get(name string) (*Profile, error) {
	p, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}
	return p.DeepCopy(), nil
}

// List returns every profile in inventory order.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p.DeepCopy())
	}
	return out
}

// Names returns device names in inventory order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		names = append(names, p.Name)
	}
	return names
}

// Count returns the number of devices.
func (r *Registry) Count() int {
	return len(r.profiles)
}
