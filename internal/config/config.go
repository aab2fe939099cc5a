package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor
	SerialPort     string
	SerialBaudRate uint
	UseMockSensor  bool
	SampleRateHz   float64

	// Kinematic processing
	SampleFrameSize     int
	CalcFrameMultiplier int
	RLSForgettingVel    float64
	RLSForgettingDisp   float64
	WarmupFrames        int
	HistoryPoints       int

	// Analysis
	FFTPoints int

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTTopicPrefix      string

	// Web server
	WebServerPort int

	// CSV recording; empty disables it
	CSVOutputDir string
}

// Dt returns the sampling interval in seconds.
func (c *Config) Dt() float64 {
	return 1.0 / c.SampleRateHz
}

// Package-level unexported variables for the config singleton:
// globalConfig is only reachable through InitGlobal/Get so every
// reader sees a fully initialized value, configOnce makes repeated
// InitGlobal calls harmless, and configMu lets concurrent readers
// share a read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config pre-filled with the tuning the sensor rig
// ships with; the file only needs to override what differs.
func defaults() *Config {
	return &Config{
		SerialBaudRate:       115200,
		SampleRateHz:         200,
		SampleFrameSize:      20,
		CalcFrameMultiplier:  100,
		RLSForgettingVel:     0.9825,
		RLSForgettingDisp:    0.9825,
		WarmupFrames:         5,
		HistoryPoints:        2000,
		FFTPoints:            512,
		MQTTClientIDProducer: "displacement-producer",
		MQTTClientIDConsole:  "displacement-console",
		MQTTClientIDWeb:      "displacement-web",
		MQTTTopicPrefix:      "sensor/data",
		WebServerPort:        8080,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = uint(rate)
	case "USE_MOCK_SENSOR":
		useMock, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid USE_MOCK_SENSOR %q: %w", value, err)
		}
		c.UseMockSensor = useMock
	case "SAMPLE_RATE_HZ":
		hz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_RATE_HZ %q: %w", value, err)
		}
		if hz <= 0 {
			return fmt.Errorf("SAMPLE_RATE_HZ must be positive, got %g", hz)
		}
		c.SampleRateHz = hz

	// Kinematic processing
	case "SAMPLE_FRAME_SIZE":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_FRAME_SIZE %q: %w", value, err)
		}
		if size <= 0 {
			return fmt.Errorf("SAMPLE_FRAME_SIZE must be positive, got %d", size)
		}
		c.SampleFrameSize = size
	case "CALC_FRAME_MULTIPLIER":
		mult, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALC_FRAME_MULTIPLIER %q: %w", value, err)
		}
		if mult <= 0 {
			return fmt.Errorf("CALC_FRAME_MULTIPLIER must be positive, got %d", mult)
		}
		c.CalcFrameMultiplier = mult
	case "RLS_FORGETTING_VEL":
		q, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RLS_FORGETTING_VEL %q: %w", value, err)
		}
		if q <= 0 || q > 1 {
			return fmt.Errorf("RLS_FORGETTING_VEL must be in (0, 1], got %g", q)
		}
		c.RLSForgettingVel = q
	case "RLS_FORGETTING_DISP":
		q, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RLS_FORGETTING_DISP %q: %w", value, err)
		}
		if q <= 0 || q > 1 {
			return fmt.Errorf("RLS_FORGETTING_DISP must be in (0, 1], got %g", q)
		}
		c.RLSForgettingDisp = q
	case "WARMUP_FRAMES":
		frames, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WARMUP_FRAMES %q: %w", value, err)
		}
		if frames < 0 {
			return fmt.Errorf("WARMUP_FRAMES must not be negative, got %d", frames)
		}
		c.WarmupFrames = frames
	case "HISTORY_POINTS":
		points, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HISTORY_POINTS %q: %w", value, err)
		}
		if points <= 0 {
			return fmt.Errorf("HISTORY_POINTS must be positive, got %d", points)
		}
		c.HistoryPoints = points

	// Analysis
	case "FFT_POINTS":
		points, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FFT_POINTS %q: %w", value, err)
		}
		if points <= 0 {
			return fmt.Errorf("FFT_POINTS must be positive, got %d", points)
		}
		c.FFTPoints = points

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_TOPIC_PREFIX":
		c.MQTTTopicPrefix = value

	// Web server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// CSV recording
	case "CSV_OUTPUT_DIR":
		c.CSVOutputDir = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if !c.UseMockSensor && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required unless USE_MOCK_SENSOR is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
