// Package api implements the HTTP surface of the looking glass.
//
// Handlers are thin: every request is translated into one call on the
// lookingglass.Engine and its result is written back as JSON. Two route
// families are served:
//
//   - /api/v1/... : the versioned JSON API (devices, commands, execute,
//     audit, health, metrics)
//   - /get_allowed_commands, /get_variables, /execute and /api/execute :
//     the legacy routes used by the web front end, with their original
//     response shapes
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
