// Package lookingglass implements the authorization and execution engine.
//
// An Engine owns a read-only device registry and command catalog, both built
// once at startup, and answers four boundary operations:
//
//   - ListDevices: the devices available for display.
//   - ListAllowedCommands: the catalog entries a device may run.
//   - CommandVariables: the variables a command declares.
//   - Execute: authorize, validate, render and dispatch one command.
//
// Execute runs a fixed sequence of gates and stops at the first failure:
//
//	device lookup → allowed → not disallowed → in catalog →
//	normalise variables → required variables → value check →
//	render template → dispatch
//
// Every failure is returned as data in Result.Error; nothing panics or
// escapes the engine. No device session is opened until every gate before
// dispatch has passed, and a session is always closed before Execute
// returns.
//
// # Concurrency
//
// Engine is safe for concurrent use. Calls share no mutable state apart from
// an optional per-device semaphore that caps simultaneous sessions to one
// device.
//
// # Observers
//
// Observers registered with AddObserver see every Execute outcome (audit
// trail, event publishing, metrics). An observer error is logged and never
// changes the Result.
package lookingglass
