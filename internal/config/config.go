package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTEnabled         bool
	MQTTBroker          string
	MQTTClientIDReplay  string
	MQTTClientIDConsole string
	MQTTClientIDDisplay string
	MQTTClientIDCapture string

	// Topics
	TopicFrame   string
	TopicPose    string
	TopicCapture string

	// Web Server
	WebServerPort int
	WebStaticDir  string

	// 3D model
	ModelMTLPath string
	ModelOBJPath string

	// Playback
	FrameInterval        int // milliseconds
	TimelineAppend       bool
	PlaybackVisitLastRow bool

	// Charts
	ChartWidth  int
	ChartHeight int

	// Capture
	SerialPort        string
	SerialBaudRate    int
	CaptureDir        string
	CaptureFlushEvery int

	// Processing
	AccelSensitivity float64 // LSB per g
	GyroSensitivity  float64 // LSB per deg/s
	TimeOffsetHours  float64

	// Display
	DisplayUpdateInterval int // milliseconds

	// Discovery
	MDNSEnabled  bool
	MDNSInstance string
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify it without locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex; write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when no file overrides a key.
func Default() *Config {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "inertial-replay"
	}
	return &Config{
		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDReplay:  "inertial-replay",
		MQTTClientIDConsole: "inertial-replay-console",
		MQTTClientIDDisplay: "inertial-replay-display",
		MQTTClientIDCapture: "inertial-replay-capture",

		TopicFrame:   "replay/frame",
		TopicPose:    "replay/pose",
		TopicCapture: "capture",

		WebServerPort: 8080,
		WebStaticDir:  "web",

		ModelMTLPath: "3d_models/Assembly_Smart_Apple_low.mtl",
		ModelOBJPath: "3d_models/Assembly_Smart_Apple_low.obj",

		FrameInterval: 16,

		ChartWidth:  1024,
		ChartHeight: 400,

		SerialPort:        "/dev/ttyACM0",
		SerialBaudRate:    115200,
		CaptureDir:        "acquisitions",
		CaptureFlushEvery: 100,

		AccelSensitivity: 4096,
		GyroSensitivity:  16.4,
		TimeOffsetHours:  1,

		DisplayUpdateInterval: 200,

		MDNSInstance: host,
	}
}

// Load reads the configuration file and returns a Config struct. Files
// ending in .yaml or .yml hold a flat mapping of the same keys; anything
// else is read as KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = cfg.readYAML(file)
	default:
		err = cfg.readKeyValue(file)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readKeyValue(r io.Reader) error {
	scanner := bufio.NewScanner(r)
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
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func (c *Config) readYAML(r io.Reader) error {
	var values map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	for key, node := range values {
		if node.Kind != yaml.ScalarNode {
			return fmt.Errorf("config key %s: expected a scalar value", key)
		}
		if err := c.setValue(key, node.Value); err != nil {
			return fmt.Errorf("config line %d: %w", node.Line, err)
		}
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_ENABLED":
		c.MQTTEnabled, err = parseBool(key, value)
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_REPLAY":
		c.MQTTClientIDReplay = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_CAPTURE":
		c.MQTTClientIDCapture = value

	// Topics
	case "TOPIC_FRAME":
		c.TopicFrame = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_CAPTURE":
		c.TopicCapture = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 1, 65535)
	case "WEB_STATIC_DIR":
		c.WebStaticDir = value

	// 3D model
	case "MODEL_MTL_PATH":
		c.ModelMTLPath = value
	case "MODEL_OBJ_PATH":
		c.ModelOBJPath = value

	// Playback
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value, 1, 1000)
	case "TIMELINE_APPEND":
		c.TimelineAppend, err = parseBool(key, value)
	case "PLAYBACK_VISIT_LAST_ROW":
		c.PlaybackVisitLastRow, err = parseBool(key, value)

	// Charts
	case "CHART_WIDTH":
		c.ChartWidth, err = parseInt(key, value, 64, 8192)
	case "CHART_HEIGHT":
		c.ChartHeight, err = parseInt(key, value, 64, 8192)

	// Capture
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value, 1, 4000000)
	case "CAPTURE_DIR":
		c.CaptureDir = value
	case "CAPTURE_FLUSH_EVERY":
		c.CaptureFlushEvery, err = parseInt(key, value, 1, 1000000)

	// Processing
	case "ACCEL_SENSITIVITY":
		c.AccelSensitivity, err = parseFloat(key, value)
	case "GYRO_SENSITIVITY":
		c.GyroSensitivity, err = parseFloat(key, value)
	case "TIME_OFFSET_HOURS":
		c.TimeOffsetHours, err = parseFloat(key, value)

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value, 10, 60000)

	// Discovery
	case "MDNS_ENABLED":
		c.MDNSEnabled, err = parseBool(key, value)
	case "MDNS_INSTANCE":
		c.MDNSInstance = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTEnabled && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when MQTT_ENABLED is set")
	}
	if c.ModelOBJPath == "" {
		return fmt.Errorf("MODEL_OBJ_PATH is required")
	}
	if c.AccelSensitivity == 0 {
		return fmt.Errorf("ACCEL_SENSITIVITY must be non-zero")
	}
	if c.GyroSensitivity == 0 {
		return fmt.Errorf("GYRO_SENSITIVITY must be non-zero")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// An empty path keeps the defaults.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if configPath == "" {
			globalConfig = Default()
			return
		}
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
