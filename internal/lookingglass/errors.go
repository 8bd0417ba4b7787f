package lookingglass

import "fmt"

// ErrorKind classifies an Execute failure.
type ErrorKind string

// Failure kinds, in gate order.
const (
	KindDeviceNotFound                   ErrorKind = "device_not_found"
	KindCommandNotAllowed                ErrorKind = "command_not_allowed"
	KindCommandDisallowed                ErrorKind = "command_disallowed"
	KindCommandNotFound                  ErrorKind = "command_not_found"
	KindMissingRequiredVariable          ErrorKind = "missing_required_variable"
	KindInvalidVariableValue             ErrorKind = "invalid_variable_value"
	KindVariableSubstitutionFailed       ErrorKind = "variable_substitution_failed"
	KindVariablesRequiredButNoneProvided ErrorKind = "variables_required_but_none_provided"
	KindTransportFailure                 ErrorKind = "transport_failure"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrDeviceNotFound                   = &Error{Kind: KindDeviceNotFound, Message: "Device not found"}
	ErrCommandNotAllowed                = &Error{Kind: KindCommandNotAllowed, Message: "Command not allowed"}
	ErrCommandDisallowed                = &Error{Kind: KindCommandDisallowed, Message: "Command disallowed"}
	ErrCommandNotFound                  = &Error{Kind: KindCommandNotFound, Message: "Command not found"}
	ErrMissingRequiredVariable          = &Error{Kind: KindMissingRequiredVariable}
	ErrInvalidVariableValue             = &Error{Kind: KindInvalidVariableValue}
	ErrVariableSubstitutionFailed       = &Error{Kind: KindVariableSubstitutionFailed}
	ErrVariablesRequiredButNoneProvided = &Error{Kind: KindVariablesRequiredButNoneProvided, Message: "Command requires variables but none provided"}
	ErrTransportFailure                 = &Error{Kind: KindTransportFailure}
)

// Error is a reported Execute failure. Message is safe to show to callers:
// it never contains device credentials.
type Error struct {
	Kind ErrorKind

	// Variable names the offending variable for the variable kinds.
	Variable string

	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func variableError(kind ErrorKind, name, format string) *Error {
	return &Error{Kind: kind, Variable: name, Message: fmt.Sprintf(format, name)}
}
