package device

import (
	"fmt"

	"github.com/nerrad567/lookingglass/internal/command"
	"github.com/nerrad567/lookingglass/internal/group"
)

// Builder turns inventory devices into a Registry of resolved profiles.
type Builder struct {
	resolver *group.Resolver
	logger   Logger
}

// NewBuilder creates a builder that resolves groups with resolver.
// A nil resolver behaves like an empty group table.
func NewBuilder(resolver *group.Resolver) *Builder {
	if resolver == nil {
		resolver = group.NewResolver(nil)
	}
	return &Builder{
		resolver: resolver,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the builder.
func (b *Builder) SetLogger(logger Logger) {
	b.logger = logger
}

// Build resolves every device and returns an immutable registry.
//
// For each device, in inventory order:
//  1. Validates the name and settings
//  2. Resolves the group chain ("ungrouped" when no group is set)
//  3. Fills driver, hostname and credentials the device leaves empty from
//     the merged group settings, then removes credentials from Settings
//  4. Computes permissions so that Allowed never contains a Disallowed ID
//
// A device whose group is unknown keeps only its own fields and lists.
// A cyclic hierarchy is logged and does not fail the build.
//
// Parameters:
//   - devices: Inventory devices; the slice is not retained
//
// Returns:
//   - *Registry: Profiles in inventory order
//   - error: ErrInvalidDevice for a bad device or one with no driver,
//     ErrDuplicateDevice when a name repeats
//
// Thread Safety:
//   - Build may be called concurrently. The returned Registry is read-only.
func (b *Builder) Build(devices []Device) (*Registry, error) {
	reg := newRegistry(len(devices))

	for i, d := range devices {
		if err := validateDevice(d); err != nil {
			return nil, fmt.Errorf("device %d: %w", i, err)
		}
		if _, exists := reg.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDevice, d.Name)
		}

		p := b.resolve(d)
		if p.Driver == "" {
			return nil, fmt.Errorf("%w: %s: no driver set on device or group", ErrInvalidDevice, d.Name)
		}

		if err := reg.add(p); err != nil {
			return nil, err
		}
	}

	b.logger.Info("device registry built", "count", len(reg.profiles))
	return reg, nil
}

// resolve merges one device with its group chain.
func (b *Builder) resolve(d Device) *Profile {
	groupID := d.Group
	if groupID == "" {
		groupID = group.Ungrouped
	}

	// An undefined "ungrouped" group inherits nothing, so skip the walk.
	var eff group.EffectiveSettings
	if groupID != group.Ungrouped || b.resolver.Has(groupID) {
		eff = b.resolver.Resolve(groupID)
		if eff.CycleAt != "" {
			b.logger.Warn("device inherits from cyclic group hierarchy",
				"device", d.Name,
				"group", groupID,
				"cycle_at", eff.CycleAt,
			)
		}
	}

	if eff.Empty() {
		return deviceOnlyProfile(d, groupID)
	}

	p := &Profile{
		Name:       d.Name,
		Group:      groupID,
		Driver:     firstNonEmpty(d.Driver, stringSetting(eff.Settings, SettingDriver)),
		Hostname:   firstNonEmpty(d.Hostname, stringSetting(eff.Settings, SettingHostname)),
		Username:   firstNonEmpty(d.Username, stringSetting(eff.Settings, SettingUsername)),
		Password:   firstNonEmpty(d.Password, stringSetting(eff.Settings, SettingPassword)),
		GroupChain: eff.Chain,
		Settings:   deepCopyMap(eff.Settings),
	}
	for k, v := range d.Settings {
		p.Settings[k] = deepCopyValue(v)
	}
	stripCredentials(p.Settings)

	disallowed := eff.Disallowed.Union(d.DisallowedCommands)
	p.Permissions = Permissions{
		Allowed:    eff.Allowed.Union(d.AllowedCommands).Minus(disallowed),
		Disallowed: disallowed,
	}

	return p
}

// deviceOnlyProfile builds permissions from the device's own lists.
func deviceOnlyProfile(d Device, groupID string) *Profile {
	disallowed := command.Set{}.Union(d.DisallowedCommands)
	return &Profile{
		Name:     d.Name,
		Group:    groupID,
		Driver:   d.Driver,
		Hostname: d.Hostname,
		Username: d.Username,
		Password: d.Password,
		Permissions: Permissions{
			Allowed:    command.Set{}.Union(d.AllowedCommands).Minus(disallowed),
			Disallowed: disallowed,
		},
		Settings: stripCredentials(deepCopyMap(d.Settings)),
	}
}

// stripCredentials removes credentials lifted into Profile fields so they
// never travel onward with the free-form settings.
func stripCredentials(settings map[string]any) map[string]any {
	delete(settings, SettingUsername)
	delete(settings, SettingPassword)
	return settings
}

// stringSetting returns settings[key] if it is a string.
func stringSetting(settings map[string]any, key string) string {
	if s, ok := settings[key].(string); ok {
		return s
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
