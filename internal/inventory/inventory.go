package inventory

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/lookingglass/internal/command"
	"github.com/nerrad567/lookingglass/internal/device"
	"github.com/nerrad567/lookingglass/internal/group"
)

var (
	// ErrInvalidInventory is returned when an inventory fails validation.
	ErrInvalidInventory = errors.New("inventory: invalid")

	// ErrDuplicateEntry is returned when two files define the same group or
	// command.
	ErrDuplicateEntry = errors.New("inventory: duplicate entry")
)

// File is the parsed inventory.
type File struct {
	MergePolicies map[string]string        `yaml:"merge_policies,omitempty" validate:"dive,oneof=override union"`
	Groups        map[string]GroupConfig   `yaml:"groups,omitempty" validate:"dive"`
	Devices       []DeviceConfig           `yaml:"devices,omitempty" validate:"dive"`
	Commands      map[string]CommandConfig `yaml:"commands,omitempty" validate:"dive"`
}

// GroupConfig is one group entry.
type GroupConfig struct {
	Parent             string         `yaml:"parent,omitempty"`
	AllowedCommands    []string       `yaml:"allowed_commands,omitempty" validate:"dive,required"`
	DisallowedCommands []string       `yaml:"disallowed_commands,omitempty" validate:"dive,required"`
	Settings           map[string]any `yaml:",inline"`
}

// DeviceConfig is one device entry. Driver and credentials may be left to
// the device's group.
type DeviceConfig struct {
	Name               string         `yaml:"name" validate:"required"`
	Group              string         `yaml:"group,omitempty"`
	Driver             string         `yaml:"driver,omitempty"`
	Hostname           string         `yaml:"hostname,omitempty" validate:"omitempty,hostname_rfc1123|ip"`
	Username           string         `yaml:"username,omitempty"`
	Password           string         `yaml:"password,omitempty"`
	AllowedCommands    []string       `yaml:"allowed_commands,omitempty" validate:"dive,required"`
	DisallowedCommands []string       `yaml:"disallowed_commands,omitempty" validate:"dive,required"`
	Settings           map[string]any `yaml:",inline"`
}

// CommandConfig is one catalog entry.
type CommandConfig struct {
	Command     string           `yaml:"command" validate:"required"`
	Description string           `yaml:"description,omitempty"`
	Variables   []VariableConfig `yaml:"variables,omitempty" validate:"dive"`
}

// VariableConfig declares one command variable.
type VariableConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Required    bool   `yaml:"required,omitempty"`
	Description string `yaml:"description,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Load reads and merges the inventory files at paths, then validates the
// result.
func Load(paths ...string) (*File, error) {
	merged := &File{}
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("reading inventory %s: %w", path, err)
		}

		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
		}
		if err := merged.merge(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Parse decodes and validates a single inventory document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) merge(other *File) error {
	if f.MergePolicies == nil {
		f.MergePolicies = make(map[string]string)
	}
	for k, v := range other.MergePolicies {
		f.MergePolicies[k] = v
	}

	if f.Groups == nil {
		f.Groups = make(map[string]GroupConfig)
	}
	for id, g := range other.Groups {
		if _, exists := f.Groups[id]; exists {
			return fmt.Errorf("%w: group %q", ErrDuplicateEntry, id)
		}
		f.Groups[id] = g
	}

	if f.Commands == nil {
		f.Commands = make(map[string]CommandConfig)
	}
	for id, c := range other.Commands {
		if _, exists := f.Commands[id]; exists {
			return fmt.Errorf("%w: command %q", ErrDuplicateEntry, id)
		}
		f.Commands[id] = c
	}

	f.Devices = append(f.Devices, other.Devices...)
	return nil
}

// Validate checks the inventory structure and returns every problem found.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInventory, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "File.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not a valid %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInventory, strings.Join(msgs, "; "))
}

// ResolverOptions returns the merge policies declared by the inventory.
func (f *File) ResolverOptions() []group.Option {
	keys := make([]string, 0, len(f.MergePolicies))
	for k := range f.MergePolicies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]group.Option, 0, len(keys))
	for _, k := range keys {
		policy := group.PolicyOverride
		if f.MergePolicies[k] == group.PolicyUnion.String() {
			policy = group.PolicyUnion
		}
		opts = append(opts, group.WithMergePolicy(k, policy))
	}
	return opts
}

// GroupTable converts the group entries for a group.Resolver.
func (f *File) GroupTable() map[string]group.Group {
	out := make(map[string]group.Group, len(f.Groups))
	for id, g := range f.Groups {
		out[id] = group.Group{
			ID:                 id,
			Parent:             g.Parent,
			AllowedCommands:    command.NewSet(g.AllowedCommands...),
			DisallowedCommands: command.NewSet(g.DisallowedCommands...),
			Settings:           copySettings(g.Settings),
		}
	}
	return out
}

// DeviceList converts the device entries, in file order.
func (f *File) DeviceList() []device.Device {
	out := make([]device.Device, len(f.Devices))
	for i, d := range f.Devices {
		out[i] = device.Device{
			Name:               d.Name,
			Group:              d.Group,
			Driver:             d.Driver,
			Hostname:           d.Hostname,
			Username:           d.Username,
			Password:           d.Password,
			AllowedCommands:    command.NewSet(d.AllowedCommands...),
			DisallowedCommands: command.NewSet(d.DisallowedCommands...),
			Settings:           copySettings(d.Settings),
		}
	}
	return out
}

// CommandSpecs converts the command entries, sorted by ID.
func (f *File) CommandSpecs() []command.Spec {
	ids := make([]string, 0, len(f.Commands))
	for id := range f.Commands {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]command.Spec, 0, len(ids))
	for _, id := range ids {
		c := f.Commands[id]
		vars := make([]command.VariableSpec, len(c.Variables))
		for i, v := range c.Variables {
			vars[i] = command.VariableSpec{Name: v.Name, Required: v.Required, Description: v.Description}
		}
		out = append(out, command.Spec{
			ID:          id,
			Template:    c.Command,
			Description: c.Description,
			Variables:   vars,
		})
	}
	return out
}

func copySettings(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
