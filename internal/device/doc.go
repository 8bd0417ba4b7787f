// Package device provides the device registry of the looking glass.
//
// The registry is the catalogue of network devices a caller may query. It is
// built once at startup from the inventory: every Device is merged with its
// group chain (see package group) into a Profile carrying the connection
// parameters and the effective command permissions.
//
// # Permission merge
//
// For a device in group G with device-local lists:
//
//	disallowed = G.disallowed ∪ device.disallowed
//	allowed    = (G.allowed ∪ device.allowed) − disallowed
//
// A device whose group is "ungrouped" and not defined in the group table, or
// whose group resolves to nothing, uses only its own lists.
//
// Scalar settings (driver, hostname, username, password and any opaque key)
// set on the device override the inherited value outright.
//
// # Usage
//
//	builder := device.NewBuilder(group.NewResolver(groups))
//	builder.SetLogger(log)
//	registry, err := builder.Build(devices)
//	if err != nil {
//	    return err
//	}
//	profile, err := registry.Get("edge-router-1")
//
// # Thread Safety
//
// A Registry is immutable after Build and safe for concurrent reads without
// locking. Profiles handed out are deep copies.
package device
