// Package driver provides the device-session capability used by the looking
// glass engine.
//
// A Driver opens a Session to one device; a Session runs one CLI command and
// returns the raw output, then is closed. The engine never holds a session
// across requests.
//
// Drivers are selected by driver kind (the "driver" inventory field, e.g.
// "ios" or "junos") through a Table built at startup:
//
//	sshDriver, err := driver.NewSSH(driver.SSHConfig{Port: 22, KnownHostsFile: path})
//	table := driver.NewTable(map[string]driver.Driver{
//	    "ios":   sshDriver,
//	    "junos": sshDriver,
//	    "mock":  driver.NewMock(nil),
//	})
//
// Raw output may be a string, a map of command to text, or a list of lines;
// Normalise turns any of these into the text returned to callers.
//
// # Security
//
// Params carries credentials. Its String and LogValue methods redact them, so
// a Params value can be logged safely.
package driver
