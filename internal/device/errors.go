package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device name is not in the registry.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDuplicateDevice is returned when two inventory devices share a name.
	ErrDuplicateDevice = errors.New("device: duplicate name")

	// ErrInvalidDevice is returned when a device lacks a name or driver
	// after inheritance.
	ErrInvalidDevice = errors.New("device: invalid")
)
