// Package config loads and validates the looking glass configuration.
//
// Values are layered: hard-coded defaults, then the YAML file, then
// LOOKINGGLASS_* environment variables. Validate reports every problem in
// a single error.
//
// Secrets (MQTT password, InfluxDB token) are best set through the
// environment. Device credentials do not live here; they belong to the
// inventory files.
//
// Usage:
//
//	cfg, err := config.Load(config.ResolvePath(*configFlag))
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
