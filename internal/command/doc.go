// Package command provides the Command Catalog for the looking glass.
//
// The catalog is the static table of whitelisted diagnostic commands. Each
// entry maps a command identifier (e.g. "bgp_summary") to a CLI template such
// as "show bgp neighbor {neighbor}" and the ordered list of variables the
// template declares.
//
// # Lifecycle
//
// A Catalog is built once at startup with NewCatalog and is read-only
// afterwards, so it is safe for unsynchronised concurrent reads.
//
// # Templates
//
// Placeholders are written as {name}. Doubled braces ({{ and }}) produce a
// literal brace. Templates are not checked against their declared variables
// when the catalog is built: a placeholder without a matching value is only
// reported when Render is called.
//
//	out, err := command.Render("show route {prefix}", map[string]string{"prefix": "10.0.0.0/8"})
//	// out == "show route 10.0.0.0/8"
package command
