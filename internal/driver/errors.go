package driver

import "errors"

var (
	// ErrUnknownDriver is returned when no driver is registered for a kind.
	ErrUnknownDriver = errors.New("driver: unknown driver kind")

	// ErrInvalidParams is returned when connection parameters are incomplete.
	ErrInvalidParams = errors.New("driver: invalid connection parameters")

	// ErrConnectFailed is returned when a session cannot be established.
	ErrConnectFailed = errors.New("driver: connection failed")

	// ErrCommandFailed is returned when a command cannot be run on an open
	// session.
	ErrCommandFailed = errors.New("driver: command failed")

	// ErrNoHostKeyPolicy is returned when the SSH driver has neither a
	// known_hosts file nor explicit permission to skip host key checks.
	ErrNoHostKeyPolicy = errors.New("driver: ssh host key policy not configured")
)
