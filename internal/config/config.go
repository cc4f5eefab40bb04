package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/skyward/flightcore/internal/physics"
	"github.com/skyward/flightcore/internal/sim"
)

// OTelConfig holds the OpenTelemetry metrics settings.
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	ExportInterval time.Duration `json:"exportInterval" mapstructure:"exportInterval"`
}

// OrbitConfig holds the default orbit session tuning.
type OrbitConfig struct {
	Radius float64 `json:"radius" mapstructure:"radius"`
	Speed  float64 `json:"speed" mapstructure:"speed"`
	Bank   float64 `json:"bank" mapstructure:"bank"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "flightcore")
	viper.SetDefault("db.sqlitePath", "")

	viper.SetDefault("influx.enabled", true)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "flightcore-metrics")
	viper.SetDefault("influx.writeInterval", "5s")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "flightcore")
	viper.SetDefault("otel.exportInterval", "30s")

	viper.SetDefault("geocoder.baseUrl", "https://nominatim.openstreetmap.org")

	viper.SetDefault("sim.tickRate", 20.0)
	viper.SetDefault("sim.start.lat", 47.6205)
	viper.SetDefault("sim.start.lon", -122.3493)
	viper.SetDefault("sim.start.alt", 500.0)
	viper.SetDefault("sim.collision.checkInterval", 10)
	viper.SetDefault("sim.collision.groundMargin", 0.3)
	viper.SetDefault("sim.collision.probeDistance", 1.5)
	viper.SetDefault("sim.collision.riseMargin", 0.5)

	viper.SetDefault("input.holdWindow", "3s")

	viper.SetDefault("orbit.radius", 300.0)
	viper.SetDefault("orbit.speed", 40.0)
	viper.SetDefault("orbit.bank", 0.0)

	viper.SetDefault("vehicles.drone.minSpeed", 0.0)
	viper.SetDefault("vehicles.drone.maxSpeed", 30.0)
	viper.SetDefault("vehicles.drone.speedChangeRate", 10.0)
	viper.SetDefault("vehicles.drone.turnRate", 1.2)
	viper.SetDefault("vehicles.drone.climbRate", 8.0)
	viper.SetDefault("vehicles.drone.hoverDamping", 0.6)
	viper.SetDefault("vehicles.drone.tiltRate", 0.8)
	viper.SetDefault("vehicles.drone.maxTilt", 0.5)
	viper.SetDefault("vehicles.drone.strafeSpeed", 6.0)
	viper.SetDefault("vehicles.drone.requiresAirspeedToTurn", false)

	viper.SetDefault("vehicles.fixedwing.minSpeed", 15.0)
	viper.SetDefault("vehicles.fixedwing.maxSpeed", 80.0)
	viper.SetDefault("vehicles.fixedwing.speedChangeRate", 6.0)
	viper.SetDefault("vehicles.fixedwing.turnRate", 0.5)
	viper.SetDefault("vehicles.fixedwing.climbRate", 10.0)
	viper.SetDefault("vehicles.fixedwing.hoverDamping", 0.2)
	viper.SetDefault("vehicles.fixedwing.tiltRate", 0.6)
	viper.SetDefault("vehicles.fixedwing.maxTilt", 0.7)
	viper.SetDefault("vehicles.fixedwing.strafeSpeed", 0.0)
	viper.SetDefault("vehicles.fixedwing.requiresAirspeedToTurn", true)

	viper.SetConfigName("flightcore.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetVehicleParams builds the physics tuning for one vehicle class from
// the vehicles.<class> subtree.
func GetVehicleParams(class string) physics.Params {
	prefix := "vehicles." + class + "."
	return physics.Params{
		MinSpeed:               viper.GetFloat64(prefix + "minSpeed"),
		MaxSpeed:               viper.GetFloat64(prefix + "maxSpeed"),
		SpeedChangeRate:        viper.GetFloat64(prefix + "speedChangeRate"),
		TurnRate:               viper.GetFloat64(prefix + "turnRate"),
		ClimbRate:              viper.GetFloat64(prefix + "climbRate"),
		HoverDamping:           viper.GetFloat64(prefix + "hoverDamping"),
		TiltRate:               viper.GetFloat64(prefix + "tiltRate"),
		MaxTilt:                viper.GetFloat64(prefix + "maxTilt"),
		StrafeSpeed:            viper.GetFloat64(prefix + "strafeSpeed"),
		RequiresAirspeedToTurn: viper.GetBool(prefix + "requiresAirspeedToTurn"),
	}
}

// GetCollisionParams returns the collision probe tuning.
func GetCollisionParams() sim.CollisionParams {
	return sim.CollisionParams{
		CheckInterval: viper.GetInt("sim.collision.checkInterval"),
		GroundMargin:  viper.GetFloat64("sim.collision.groundMargin"),
		ProbeDistance: viper.GetFloat64("sim.collision.probeDistance"),
		RiseMargin:    viper.GetFloat64("sim.collision.riseMargin"),
	}
}

// GetOrbitConfig returns the default orbit session tuning.
func GetOrbitConfig() OrbitConfig {
	return OrbitConfig{
		Radius: viper.GetFloat64("orbit.radius"),
		Speed:  viper.GetFloat64("orbit.speed"),
		Bank:   viper.GetFloat64("orbit.bank"),
	}
}

// GetOTelConfig returns the OpenTelemetry metrics settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		ExportInterval: viper.GetDuration("otel.exportInterval"),
	}
}

// GetHoldWindow returns how long one discrete trigger keeps an action held.
func GetHoldWindow() time.Duration {
	return viper.GetDuration("input.holdWindow")
}

// GetWriteInterval returns the telemetry flush interval.
func GetWriteInterval() time.Duration {
	return viper.GetDuration("influx.writeInterval")
}
