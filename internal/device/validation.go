package device

import (
	"fmt"
	"strings"
	"unicode"
)

// Validation limits for inventory devices.
const (
	maxNameLength = 100

	// Settings are passed through from YAML, so their size is bounded.
	maxSettingsKeys   = 50
	maxListLen        = 100
	maxStringValueLen = 1024
	maxNestingDepth   = 10
)

// ValidateName checks that a device name is usable as a registry key,
// a URL path segment and a log field.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidDevice)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: name %q has surrounding whitespace", ErrInvalidDevice, name)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: name %q contains a control character", ErrInvalidDevice, name)
		}
	}
	return nil
}

// validateDevice checks a device before group resolution.
func validateDevice(d Device) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if len(d.Settings) > maxSettingsKeys {
		return fmt.Errorf("%w: %s: more than %d settings", ErrInvalidDevice, d.Name, maxSettingsKeys)
	}
	if err := validateMapSize(d.Settings, d.Name, 0); err != nil {
		return err
	}
	return nil
}

// validateMapSize walks nested settings, bounding depth and sizes.
func validateMapSize(m map[string]any, name string, depth int) error {
	if depth > maxNestingDepth {
		return fmt.Errorf("%w: %s: settings exceed maximum nesting depth", ErrInvalidDevice, name)
	}
	for k, v := range m {
		if len(k) > maxStringValueLen {
			return fmt.Errorf("%w: %s: setting key too long", ErrInvalidDevice, name)
		}
		if err := validateValueSize(v, name, depth); err != nil {
			return err
		}
	}
	return nil
}

func validateValueSize(v any, name string, depth int) error {
	switch val := v.(type) {
	case string:
		if len(val) > maxStringValueLen {
			return fmt.Errorf("%w: %s: setting value too long", ErrInvalidDevice, name)
		}
	case map[string]any:
		if len(val) > maxSettingsKeys {
			return fmt.Errorf("%w: %s: nested setting too large", ErrInvalidDevice, name)
		}
		return validateMapSize(val, name, depth+1)
	case []any:
		if len(val) > maxListLen {
			return fmt.Errorf("%w: %s: setting list too large", ErrInvalidDevice, name)
		}
		for _, elem := range val {
			if err := validateValueSize(elem, name, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
