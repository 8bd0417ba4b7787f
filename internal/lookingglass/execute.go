package lookingglass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/lookingglass/internal/command"
	"github.com/nerrad567/lookingglass/internal/device"
	"github.com/nerrad567/lookingglass/internal/driver"
)

const redacted = "[redacted]"

// prepared is a request that has passed every gate before dispatch.
type prepared struct {
	profile  *device.Profile
	rendered string
}

// Execute authorizes, validates and runs one command.
//
// The request passes the gates in order: device lookup, allowed set,
// disallowed set, catalog lookup, variable checks and template rendering.
// Only a request that passes all of them opens a driver session, bounded
// by the per-device limit and the command timeout. Observers are notified
// of every outcome, including rejections.
//
// Parameters:
//   - ctx: Context for cancellation; observers run even if it is cancelled
//   - req: Device, command ID and variables as supplied by the caller
//
// Returns:
//   - Result: Output on success, otherwise Error with its ErrorKind. Execute
//     never panics and never returns a Go error. Credentials never appear in
//     Result.Error.
//
// Thread Safety:
//   - Safe for concurrent use from multiple goroutines.
func (e *Engine) Execute(ctx context.Context, req Request) Result {
	start := time.Now()
	exec := Execution{Device: req.Device, CommandID: req.Command, StartedAt: start}

	var res Result
	p, failure := e.prepare(req)
	if failure != nil {
		res = Result{Error: failure}
	} else {
		exec.Rendered = p.rendered
		exec.Driver = p.profile.Driver
		res = e.dispatch(ctx, p)
	}

	exec.Duration = time.Since(start)
	exec.OutputBytes = len(res.Output)
	if res.Error != nil {
		exec.Kind = res.Error.Kind
		exec.Message = res.Error.Message
		e.log().Warn("execution rejected",
			"device", req.Device,
			"command", req.Command,
			"kind", string(res.Error.Kind),
			"error", res.Error.Message,
		)
	} else {
		e.log().Info("command executed",
			"device", req.Device,
			"command", req.Command,
			"duration_ms", exec.Duration.Milliseconds(),
		)
	}

	e.notify(ctx, exec)
	return res
}

// prepare runs every gate up to and including template rendering. No I/O
// happens here.
func (e *Engine) prepare(req Request) (*prepared, *Error) {
	profile, err := e.registry.Get(req.Device)
	if err != nil {
		return nil, newError(KindDeviceNotFound, "Device not found")
	}

	if !profile.Permissions.Allowed.Has(req.Command) {
		return nil, newError(KindCommandNotAllowed, "Command not allowed")
	}
	// Re-checked even though Allowed excludes Disallowed after a build.
	if profile.Permissions.Disallowed.Has(req.Command) {
		return nil, newError(KindCommandDisallowed, "Command disallowed")
	}

	spec, ok := e.catalog.Get(req.Command)
	if !ok {
		return nil, newError(KindCommandNotFound, "Command not found")
	}

	vars := NormaliseVariables(req.Variables)

	for _, v := range spec.Variables {
		if v.Required && vars[v.Name] == "" {
			return nil, variableError(KindMissingRequiredVariable, v.Name, "Missing required variable: %s")
		}
	}

	for name, value := range vars {
		if !validValue(value) {
			return nil, variableError(KindInvalidVariableValue, name, "Invalid value for variable: %s")
		}
	}

	rendered, failure := render(spec.Template, vars)
	if failure != nil {
		return nil, failure
	}

	return &prepared{profile: profile, rendered: rendered}, nil
}

// render substitutes vars into tmpl. With no variables at all, a template
// that still has placeholders is refused rather than sent verbatim.
func render(tmpl string, vars map[string]string) (string, *Error) {
	if len(vars) == 0 {
		names, err := command.Placeholders(tmpl)
		if err != nil {
			return "", &Error{
				Kind:    KindVariableSubstitutionFailed,
				Message: fmt.Sprintf("Command formatting error: %v", err),
			}
		}
		if len(names) > 0 {
			return "", newError(KindVariablesRequiredButNoneProvided, "Command requires variables but none provided")
		}
	}

	out, err := command.Render(tmpl, vars)
	if err != nil {
		var perr *command.PlaceholderError
		if errors.As(err, &perr) {
			return "", variableError(KindVariableSubstitutionFailed, perr.Name, "Missing or invalid variable: %s")
		}
		return "", &Error{
			Kind:    KindVariableSubstitutionFailed,
			Message: fmt.Sprintf("Command formatting error: %v", err),
		}
	}
	return out, nil
}

// dispatch opens a session, runs the rendered command and closes the
// session. Transport errors and driver panics become TransportFailure with
// credentials scrubbed from the message.
func (e *Engine) dispatch(ctx context.Context, p *prepared) (res Result) {
	params := driver.Params{
		Hostname: p.profile.Hostname,
		Username: p.profile.Username,
		Password: p.profile.Password,
		Settings: p.profile.Settings,
	}

	fail := func(err error) Result {
		msg := scrub(err.Error(), params.Password, params.Username)
		e.log().Error("transport failure",
			"device", p.profile.Name,
			"driver", p.profile.Driver,
			"error", msg,
		)
		return Result{Error: &Error{Kind: KindTransportFailure, Message: msg}}
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Errorf("driver panic: %v", r))
		}
	}()

	if sem := e.limits[p.profile.Name]; sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fail(fmt.Errorf("waiting for device slot: %w", err))
		}
		defer sem.Release(1)
	}

	if e.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CommandTimeout)
		defer cancel()
	}

	sess, err := e.opener.Open(ctx, p.profile.Driver, params)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			e.log().Debug("closing session", "device", p.profile.Name, "error", scrub(cerr.Error(), params.Password, params.Username))
		}
	}()

	raw, err := sess.Run(ctx, p.rendered)
	if err != nil {
		return fail(err)
	}

	return Result{Output: driver.Normalise(raw, p.rendered)}
}

// scrub replaces every occurrence of each non-empty secret in msg.
func scrub(msg string, secrets ...string) string {
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, redacted)
		}
	}
	return msg
}

func (e *Engine) notify(ctx context.Context, exec Execution) {
	// A caller that has gone away must not stop the audit record.
	ctx = context.WithoutCancel(ctx)

	e.mu.RLock()
	observers := e.observers
	logger := e.logger
	e.mu.RUnlock()

	for _, o := range observers {
		if err := observe(ctx, o, exec); err != nil {
			logger.Warn("execution observer failed", "device", exec.Device, "command", exec.CommandID, "error", err)
		}
	}
}

// observe calls one observer, turning a panic into an error so the next
// observer still runs.
func observe(ctx context.Context, o Observer, exec Execution) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return o.ObserveExecution(ctx, exec)
}
