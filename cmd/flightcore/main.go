// Command flightcore runs the voice-flight simulation core: a fleet of
// simulated craft advanced by a fixed-rate engine, steered by natural
// language commands read from standard input.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skyward/flightcore/internal/autopilot"
	"github.com/skyward/flightcore/internal/command"
	"github.com/skyward/flightcore/internal/config"
	"github.com/skyward/flightcore/internal/database"
	"github.com/skyward/flightcore/internal/engine"
	"github.com/skyward/flightcore/internal/geo"
	"github.com/skyward/flightcore/internal/handlers"
	"github.com/skyward/flightcore/internal/input"
	"github.com/skyward/flightcore/internal/locator"
	"github.com/skyward/flightcore/internal/logging"
	"github.com/skyward/flightcore/internal/monitor"
	otelpkg "github.com/skyward/flightcore/internal/otel"
	"github.com/skyward/flightcore/internal/registry"
	"github.com/skyward/flightcore/internal/sim"
	"github.com/skyward/flightcore/internal/telemetry"
	"github.com/skyward/flightcore/internal/terrain"
	"github.com/skyward/flightcore/pkg/core"
)

// Version and BuildDate can be set at build time via ldflags.
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"

	AppName string = "flightcore"
)

var Logger *slog.Logger

func main() {
	configDir := flag.String("config", ".", "directory containing flightcore.cfg.json")
	flag.Parse()

	sessionStart := time.Now()

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "%v, continuing with defaults\n", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		panic(fmt.Errorf("failed to create logs dir: %w", err))
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, AppName, sessionStart))
	if err != nil {
		panic(fmt.Errorf("failed to create log file: %w", err))
	}
	defer logFile.Close()

	level := config.GetString("logLevel")

	var gelfHandler *logging.GelfHandler
	if config.GetBool("graylog.enabled") {
		hostname, _ := os.Hostname()
		gelfHandler, err = logging.NewGelfHandler(
			config.GetString("graylog.address"), hostname, logging.ParseLevel(level))
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog unavailable: %v\n", err)
			gelfHandler = nil
		}
	}

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, level, gelfHandler)

	// Every record carries the session uptime.
	Logger = slog.New(logging.NewContextHandler(
		logManager.Logger().Handler(),
		func() []slog.Attr {
			return []slog.Attr{slog.Duration("uptime", time.Since(sessionStart))}
		},
	))
	Logger.Info("Starting up...", "version", Version, "buildDate", BuildDate)

	zlog := zerolog.New(logFile).With().Timestamp().Logger()

	// Metrics provider must be installed before the dispatcher builds
	// its meters against the global.
	otelCfg := config.GetOTelConfig()
	metrics, err := otelpkg.New(otelpkg.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ExportInterval: otelCfg.ExportInterval,
		MetricWriter:   logFile,
	})
	if err != nil {
		panic(fmt.Errorf("otel: %w", err))
	}

	// Place cache persistence. A dead database degrades lookups to
	// in-process memoization, it never blocks startup.
	dbManager := database.NewManager(zlog)
	var placeDB *gorm.DB
	if err := dbManager.Connect(); err != nil {
		Logger.Error("Database unavailable, place lookups will not persist", "error", err)
	} else if err := dbManager.Migrate(&locator.Place{}); err != nil {
		Logger.Error("Place cache migration failed", "error", err)
	} else {
		placeDB = dbManager.DB
	}

	loc := locator.New(locator.NewClient(config.GetString("geocoder.baseUrl")), placeDB, zlog)

	influx := telemetry.NewManager(zlog, filepath.Join(logsDir, "influx_backup.gz"))
	if err := influx.Connect(); err != nil {
		Logger.Error("Telemetry sink unavailable", "error", err)
	}
	publisher := telemetry.NewPublisher(influx, config.GetWriteInterval(), zlog)

	ell := geo.NewEllipsoid()
	ground := terrain.NewMap(ell, terrain.Flat(0))
	orbit := autopilot.New(ell)
	fleet := registry.NewFleet()

	eng := engine.New(engine.Dependencies{
		Fleet:     fleet,
		Orbit:     orbit,
		Telemetry: publisher,
		Logger:    Logger,
	}, config.GetFloat64("sim.tickRate"))

	start := ell.FromGeodetic(geo.Geodetic{
		Lon:    config.GetFloat64("sim.start.lon"),
		Lat:    config.GetFloat64("sim.start.lat"),
		Height: config.GetFloat64("sim.start.alt"),
	})
	collision := config.GetCollisionParams()
	holdWindow := config.GetHoldWindow()

	craft := []struct {
		name   string
		class  core.VehicleClass
		offset float64 // m east of the start point
	}{
		{"drone-1", core.ClassDrone, 0},
		{"hawk-1", core.ClassFixedWing, 200},
	}
	for _, c := range craft {
		pose := core.Pose{Position: ell.ENUAt(start).TransformPoint(core.Position3D{X: c.offset})}
		v, err := sim.NewVehicle(c.name, c.class, config.GetVehicleParams(string(c.class)),
			pose, ell, ground, collision)
		if err != nil {
			panic(fmt.Errorf("vehicle %s: %w", c.name, err))
		}
		eng.AddPilot(v, input.NewArbiter(input.WithHoldWindow(holdWindow)))
		Logger.Info("Vehicle ready", "vehicle", c.name, "class", string(c.class))
	}

	orbitCfg := config.GetOrbitConfig()
	svc := handlers.NewService(handlers.Dependencies{
		Engine:  eng,
		Fleet:   fleet,
		Orbit:   orbit,
		Locator: loc,
		Geodesy: ell,
		Logger:  Logger,
		OrbitOpts: handlers.OrbitDefaults{
			Radius: orbitCfg.Radius,
			Speed:  orbitCfg.Speed,
			Bank:   orbitCfg.Bank,
		},
	})
	svc.SetActive(craft[0].name)

	dispatch, err := command.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		panic(fmt.Errorf("dispatcher: %w", err))
	}
	svc.Register(dispatch)

	mon := monitor.NewService(monitor.Dependencies{
		Engine:     eng,
		Fleet:      fleet,
		Queue:      publisher,
		Influx:     influx,
		LogManager: logManager,
		StatusPath: filepath.Join(logsDir, "status.json"),
	})

	if err := publisher.Start(); err != nil {
		panic(fmt.Errorf("telemetry publisher: %w", err))
	}
	if err := eng.Start(); err != nil {
		panic(fmt.Errorf("engine: %w", err))
	}
	if err := mon.Start(); err != nil {
		panic(fmt.Errorf("monitor: %w", err))
	}
	Logger.Info("Simulation running",
		"vehicles", fleet.Len(), "tickRate", eng.TickRate(), "active", svc.Active())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

loop:
	for {
		select {
		case sig := <-sigs:
			Logger.Info("Shutting down", "signal", sig.String())
			break loop
		case line, ok := <-lines:
			if !ok {
				Logger.Info("Input closed, shutting down")
				break loop
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			ev, err := command.Interpret(line, time.Now())
			if err != nil {
				Logger.Warn("Unrecognized utterance", "text", line)
				continue
			}
			result, err := dispatch.Dispatch(ev)
			if err != nil {
				Logger.Error("Command failed", "verb", ev.Verb, "error", err)
				continue
			}
			if result != nil {
				Logger.Info("Command done", "verb", ev.Verb, "result", fmt.Sprintf("%v", result))
			}
		}
	}

	mon.Stop()
	eng.Stop()
	publisher.Stop()
	influx.Close()
	_ = metrics.Shutdown(context.Background())
	_ = logManager.Flush(context.Background())
	Logger.Info("Goodbye")
}
