package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the pump automation backend
type Config struct {
	Server     ServerConfig
	MQTT       MQTTConfig
	Database   DatabaseConfig
	Automation AutomationConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	BrokerURL        string
	ClientID         string
	Username         string
	Password         string
	KeepAlive        time.Duration
	PingTimeout      time.Duration
	ConnectRetry     bool
	TopicState       string
	TopicEvents      string
	TopicPumpCommand string
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AutomationConfig bundles every threshold, rate and schedule the control
// engine consumes. It is loaded once at startup and treated as immutable.
// Capacities and volumes are liters, thresholds are percentages, flow rates
// are liters per second.
type AutomationConfig struct {
	// Tank capacities
	MainLineTankCapacity    float64
	UndergroundTankCapacity float64
	OverheadTankCapacity    float64

	// Pump P1 (main line -> underground)
	P1StartThresholdUnderground float64 // start P1 if underground < this
	P1StopThresholdMainLine     float64 // stop P1 if main line < this
	P1ReqMainLineLevel          float64 // P1 needs main line at or above this
	P1ManualBypassMinMainLine   float64 // manual start refused below this

	// Pump P2 (boring well -> underground)
	P2StartThresholdMainLine    float64
	P2StartThresholdUnderground float64
	P2StartThresholdOverhead    float64
	P2StopThresholdUnderground  float64

	// Pump P3 (underground -> overhead)
	P3StartThresholdOverhead       float64
	P3ReqUndergroundLevel          float64
	P3SignalTargetUnderground      float64 // target level for P1/P2 when P3 requests a fill
	P3WarnThresholdOverhead        float64
	P3WarnThresholdUndergroundLow  float64
	P3WarnThresholdUndergroundHigh float64
	P3StopThresholdUnderground     float64

	// Stop hysteresis added on top of start thresholds
	HysteresisBuffer float64

	// Flow rates
	P1FlowRate           float64
	P2FlowRate           float64
	P3FlowRate           float64
	HouseholdConsumption float64

	// City water supply window (hours, start inclusive, end exclusive)
	CitySupplyStartHour int
	CitySupplyEndHour   int
	CitySupplyFlowRate  float64

	// Peak electricity window, minutes since midnight, inclusive both ends
	PeakStartMinute int
	PeakEndMinute   int

	// Ground floor meter billing days (inclusive day-of-month range)
	GroundMeterFirstDay int
	GroundMeterLastDay  int

	// Simulation step and loop period
	SimulationStep time.Duration

	// Chance of a simulated zero-pressure fault per check
	PressureFaultProbability float64
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerURL:        getMQTTBrokerURL(),
			ClientID:         getEnv("MQTT_CLIENT_ID", "pumpmatic_backend"),
			Username:         getEnv("MQTT_USERNAME", ""),
			Password:         getEnv("MQTT_PASSWORD", ""),
			KeepAlive:        getDurationEnv("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout:      getDurationEnv("MQTT_PING_TIMEOUT", 10*time.Second),
			ConnectRetry:     getBoolEnv("MQTT_CONNECT_RETRY", true),
			TopicState:       getEnv("MQTT_TOPIC_STATE", "pumpmatic/state"),
			TopicEvents:      getEnv("MQTT_TOPIC_EVENTS", "pumpmatic/events"),
			TopicPumpCommand: getEnv("MQTT_TOPIC_PUMP_COMMAND", "pumpmatic/pumps/command"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "pumpmatic"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Automation: DefaultAutomation(),
	}
}

// DefaultAutomation returns the automation parameters, each overridable
// through its environment variable
func DefaultAutomation() AutomationConfig {
	return AutomationConfig{
		MainLineTankCapacity:    getFloatEnv("TANK_MAIN_LINE_CAPACITY", 1000),
		UndergroundTankCapacity: getFloatEnv("TANK_UNDERGROUND_CAPACITY", 5000),
		OverheadTankCapacity:    getFloatEnv("TANK_OVERHEAD_CAPACITY", 2000),

		P1StartThresholdUnderground: getFloatEnv("P1_START_THRESHOLD_UNDERGROUND", 10.0),
		P1StopThresholdMainLine:     getFloatEnv("P1_STOP_THRESHOLD_MAIN_LINE", 15.0),
		P1ReqMainLineLevel:          getFloatEnv("P1_REQ_MAIN_LINE_LEVEL", 15.0),
		P1ManualBypassMinMainLine:   getFloatEnv("P1_MANUAL_BYPASS_MIN_MAIN_LINE", 5.0),

		P2StartThresholdMainLine:    getFloatEnv("P2_START_THRESHOLD_MAIN_LINE", 5.0),
		P2StartThresholdUnderground: getFloatEnv("P2_START_THRESHOLD_UNDERGROUND", 5.0),
		P2StartThresholdOverhead:    getFloatEnv("P2_START_THRESHOLD_OVERHEAD", 5.0),
		P2StopThresholdUnderground:  getFloatEnv("P2_STOP_THRESHOLD_UNDERGROUND", 30.0),

		P3StartThresholdOverhead:       getFloatEnv("P3_START_THRESHOLD_OVERHEAD", 10.0),
		P3ReqUndergroundLevel:          getFloatEnv("P3_REQ_UNDERGROUND_LEVEL", 10.0),
		P3SignalTargetUnderground:      getFloatEnv("P3_SIGNAL_TARGET_UNDERGROUND", 30.0),
		P3WarnThresholdOverhead:        getFloatEnv("P3_WARN_THRESHOLD_OVERHEAD", 5.0),
		P3WarnThresholdUndergroundLow:  getFloatEnv("P3_WARN_THRESHOLD_UNDERGROUND_LOW", 5.0),
		P3WarnThresholdUndergroundHigh: getFloatEnv("P3_WARN_THRESHOLD_UNDERGROUND_HIGH", 10.0),
		P3StopThresholdUnderground:     getFloatEnv("P3_STOP_THRESHOLD_UNDERGROUND", 5.0),

		HysteresisBuffer: getFloatEnv("HYSTERESIS_BUFFER", 5.0),

		P1FlowRate:           getFloatEnv("P1_FLOW_RATE", 10.0),
		P2FlowRate:           getFloatEnv("P2_FLOW_RATE", 8.0),
		P3FlowRate:           getFloatEnv("P3_FLOW_RATE", 12.0),
		HouseholdConsumption: getFloatEnv("HOUSEHOLD_CONSUMPTION_RATE", 1.0),

		CitySupplyStartHour: getIntEnv("CITY_SUPPLY_START_HOUR", 10),
		CitySupplyEndHour:   getIntEnv("CITY_SUPPLY_END_HOUR", 15),
		CitySupplyFlowRate:  getFloatEnv("CITY_SUPPLY_FLOW_RATE", 15.0),

		PeakStartMinute: getIntEnv("PEAK_START_MINUTE", 18*60+30),
		PeakEndMinute:   getIntEnv("PEAK_END_MINUTE", 22*60+30),

		GroundMeterFirstDay: getIntEnv("GROUND_METER_FIRST_DAY", 1),
		GroundMeterLastDay:  getIntEnv("GROUND_METER_LAST_DAY", 15),

		SimulationStep: getDurationEnv("SIMULATION_STEP", time.Second),

		PressureFaultProbability: getFloatEnv("PRESSURE_FAULT_PROBABILITY", 0.001),
	}
}

// PeakWindowLabel formats the peak window for status messages, e.g. "18:30 - 22:30"
func (a AutomationConfig) PeakWindowLabel() string {
	format := func(m int) string {
		h := m / 60
		mm := m % 60
		return pad2(h) + ":" + pad2(mm)
	}
	return format(a.PeakStartMinute) + " - " + format(a.PeakEndMinute)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// getEnv returns environment variable value or default if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration environment variable value or default if not set
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv returns boolean environment variable value or default if not set
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getFloatEnv returns float environment variable value or default if not set
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getIntEnv returns integer environment variable value or default if not set
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getMQTTBrokerURL returns MQTT broker URL with tcp:// prefix if not present
// Supports both "localhost:1883" and "tcp://localhost:1883" formats
func getMQTTBrokerURL() string {
	broker := getEnv("MQTT_BROKER", getEnv("MQTT_BROKER_URL", ""))

	if broker != "" && len(broker) > 4 && broker[:4] != "tcp:" && broker[:3] != "ssl" {
		return "tcp://" + broker
	}
	return broker
}
