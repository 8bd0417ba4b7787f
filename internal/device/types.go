package device

import (
	"github.com/nerrad567/lookingglass/internal/command"
)

// Setting keys a group may supply as defaults for its devices.
const (
	SettingDriver   = "driver"
	SettingHostname = "hostname"
	SettingUsername = "username"
	SettingPassword = "password"
)

// Device is a network device as declared in the inventory, before group
// inheritance is applied.
type Device struct {
	Name     string
	Group    string
	Driver   string
	Hostname string
	Username string
	Password string

	// Device-local command lists, combined with the inherited group sets.
	AllowedCommands    command.Set
	DisallowedCommands command.Set

	// Settings holds any further inventory keys, passed through unchanged.
	Settings map[string]any
}

// Permissions are the effective command sets of a device.
//
// Allowed never intersects Disallowed once built by a Builder.
type Permissions struct {
	Allowed    command.Set
	Disallowed command.Set
}

// Permits reports whether a command may run: it must be allowed and not
// disallowed.
func (p Permissions) Permits(id string) bool {
	return p.Allowed.Has(id) && !p.Disallowed.Has(id)
}

// Profile is a fully resolved registry entry: the device merged with its
// group chain and its effective permissions.
//
// Credentials are excluded from JSON encoding.
type Profile struct {
	Name     string `json:"name"`
	Group    string `json:"group"`
	Driver   string `json:"driver"`
	Hostname string `json:"-"`
	Username string `json:"-"`
	Password string `json:"-"`

	Permissions Permissions `json:"-"`

	// GroupChain lists the groups permissions were inherited from, nearest
	// first. Empty when the device inherits nothing.
	GroupChain []string `json:"group_chain,omitempty"`

	Settings map[string]any `json:"-"`
}

// DeepCopy returns an independent copy of the profile.
func (p *Profile) DeepCopy() *Profile {
	if p == nil {
		return nil
	}

	cpy := *p
	cpy.Permissions = Permissions{
		Allowed:    p.Permissions.Allowed.Clone(),
		Disallowed: p.Permissions.Disallowed.Clone(),
	}
	if p.GroupChain != nil {
		cpy.GroupChain = make([]string, len(p.GroupChain))
		copy(cpy.GroupChain, p.GroupChain)
	}
	cpy.Settings = deepCopyMap(p.Settings)
	return &cpy
}

// deepCopyMap creates a deep copy of a map[string]any.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}
