// Package panel serves the looking glass web form as an embedded asset.
//
// The page lets a visitor pick a device, pick one of its allowed commands,
// fill in the command's variables and run it. It talks to the legacy form
// endpoints (/get_allowed_commands, /get_variables, /execute) served by the
// api package.
//
// Assets are embedded with go:embed so the binary has no runtime file
// dependency. A directory can be supplied instead to iterate on the page
// without rebuilding.
package panel
