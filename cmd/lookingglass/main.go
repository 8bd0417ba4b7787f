// Looking Glass - read-only network diagnostics gateway.
//
// This is the main entry point. It loads the configuration and inventory,
// builds the device registry and command catalog, and serves the HTTP API
// until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nerrad567/lookingglass/internal/api"
	"github.com/nerrad567/lookingglass/internal/audit"
	"github.com/nerrad567/lookingglass/internal/command"
	"github.com/nerrad567/lookingglass/internal/device"
	"github.com/nerrad567/lookingglass/internal/driver"
	"github.com/nerrad567/lookingglass/internal/group"
	"github.com/nerrad567/lookingglass/internal/infrastructure/config"
	"github.com/nerrad567/lookingglass/internal/infrastructure/database"
	"github.com/nerrad567/lookingglass/internal/infrastructure/influxdb"
	"github.com/nerrad567/lookingglass/internal/infrastructure/logging"
	"github.com/nerrad567/lookingglass/internal/infrastructure/mqtt"
	"github.com/nerrad567/lookingglass/internal/inventory"
	"github.com/nerrad567/lookingglass/internal/lookingglass"
	"github.com/nerrad567/lookingglass/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// mockDriverKind is always registered so inventories can be exercised
// without reachable devices.
const mockDriverKind = "mock"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("lookingglass", pflag.ContinueOnError)
	flags.SetOutput(stdout)
	configPath := flags.StringP("config", "c", "", "path to config file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	checkOnly := flags.Bool("check", false, "validate config and inventory, then exit")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "lookingglass %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	// Use default logger until config is loaded
	log := logging.Default()

	path := config.ResolvePath(*configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting looking glass",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", path,
	)

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	if *checkOnly {
		fmt.Fprintf(stdout, "configuration OK: %d devices, %d commands\n",
			len(engine.ListDevices()), len(engine.ListCommands()))
		return nil
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	auditRepo := audit.NewSQLiteRepository(db.DB)
	engine.AddObserver(audit.NewRecorder(auditRepo))

	checks := map[string]api.HealthChecker{"database": db}

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		engine.AddObserver(mqtt.NewExecutionPublisher(mqttClient))
		checks["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		influxClient.SetOnError(func(err error) {
			log.Error("influxdb write failed", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		engine.AddObserver(influxClient)
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Engine:  engine,
		Audit:   auditRepo,
		Checks:  checks,
		DBStats: db,
		Site:    cfg.Site,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// buildEngine loads the inventory and assembles the resolver, registry,
// catalog and driver table behind an engine.
func buildEngine(cfg *config.Config, log *logging.Logger) (*lookingglass.Engine, error) {
	inv, err := inventory.Load(cfg.Inventory.Paths...)
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}

	opts := append(inv.ResolverOptions(), group.WithLogger(log))
	resolver := group.NewResolver(inv.GroupTable(), opts...)

	builder := device.NewBuilder(resolver)
	builder.SetLogger(log)
	registry, err := builder.Build(inv.DeviceList())
	if err != nil {
		return nil, fmt.Errorf("building device registry: %w", err)
	}

	catalog, err := command.NewCatalog(inv.CommandSpecs())
	if err != nil {
		return nil, fmt.Errorf("building command catalog: %w", err)
	}

	drivers, err := buildDrivers(cfg)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	for _, kind := range drivers.Kinds() {
		known[kind] = true
	}
	for _, p := range registry.List() {
		if !known[p.Driver] {
			log.Warn("device uses an unregistered driver", "device", p.Name, "driver", p.Driver)
		}
	}

	engine, err := lookingglass.New(registry, catalog, drivers, lookingglass.Options{
		MaxConcurrentPerDevice: cfg.Engine.MaxConcurrentPerDevice,
		CommandTimeout:         cfg.GetCommandTimeout(),
	})
	if err != nil {
		return nil, err
	}
	engine.SetLogger(log)

	log.Info("inventory loaded",
		"devices", registry.Count(),
		"commands", catalog.Len(),
		"drivers", drivers.Kinds(),
	)
	return engine, nil
}

// buildDrivers registers the SSH driver under every configured kind and the
// mock driver under "mock".
func buildDrivers(cfg *config.Config) (*driver.Table, error) {
	dc := cfg.Drivers
	responses := make(map[string]any, len(dc.MockResponses))
	for cmd, out := range dc.MockResponses {
		responses[cmd] = out
	}
	drivers := map[string]driver.Driver{
		mockDriverKind: driver.NewMock(responses),
	}

	if len(dc.Kinds) > 0 {
		ssh, err := driver.NewSSH(driver.SSHConfig{
			Port:                  dc.SSH.Port,
			ConnectTimeout:        cfg.GetConnectTimeout(),
			KnownHostsFile:        dc.SSH.KnownHosts,
			InsecureIgnoreHostKey: dc.SSH.InsecureIgnoreHostKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating SSH driver: %w", err)
		}
		for _, kind := range dc.Kinds {
			if kind == mockDriverKind {
				continue
			}
			drivers[kind] = ssh
		}
	}

	return driver.NewTable(drivers), nil
}

// healthCheck verifies every infrastructure connection. It returns the
// first failure.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, c := range checks {
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
