// Package config loads the crowd-gate configuration from YAML or TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/estimator"
)

// Config represents the complete crowd-gate configuration
type Config struct {
	Decision  DecisionConfig  `yaml:"decision" toml:"decision"`
	Display   DisplayConfig   `yaml:"display" toml:"display"`
	Input     InputConfig     `yaml:"input" toml:"input"`
	Estimator EstimatorConfig `yaml:"estimator" toml:"estimator"`
	Publisher PublisherConfig `yaml:"publisher" toml:"publisher"`
	HTTP      HTTPConfig      `yaml:"http" toml:"http"`
}

// DecisionConfig contains gate weights and classification thresholds
type DecisionConfig struct {
	Weights         []float64 `yaml:"weights" toml:"weights"`
	GreenThreshold  int       `yaml:"green_threshold" toml:"green_threshold"`
	YellowThreshold int       `yaml:"yellow_threshold" toml:"yellow_threshold"`
}

// DisplayConfig contains the informational banner limits
type DisplayConfig struct {
	GreenLimit  int `yaml:"green_limit" toml:"green_limit"`
	YellowLimit int `yaml:"yellow_limit" toml:"yellow_limit"`
}

// InputConfig bounds user-supplied crowd counts
type InputConfig struct {
	MaxCrowd int `yaml:"max_crowd" toml:"max_crowd"` // slider maximum (default: 200)
}

// EstimatorConfig contains video estimation settings
type EstimatorConfig struct {
	VideoPath string  `yaml:"video_path" toml:"video_path"`
	WindowS   float64 `yaml:"window_s" toml:"window_s"`     // seconds sampled from the start (default: 5)
	SampleFPS float64 `yaml:"sample_fps" toml:"sample_fps"` // default: 1
	Scale     float64 `yaml:"scale" toml:"scale"`           // default: 0.8
	Fallback  *int    `yaml:"fallback" toml:"fallback"`     // default: 50 (0 is a valid fallback)
	TimeoutS  int     `yaml:"timeout_s" toml:"timeout_s"`   // default: 30
}

// PublisherConfig selects where reports are pushed
type PublisherConfig struct {
	Kind     string      `yaml:"kind" toml:"kind"`         // none, mqtt, kafka
	Encoding string      `yaml:"encoding" toml:"encoding"` // json (default), msgpack
	MQTT     MQTTConfig  `yaml:"mqtt" toml:"mqtt"`
	Kafka    KafkaConfig `yaml:"kafka" toml:"kafka"`
}

// MQTTConfig contains MQTT broker settings
type MQTTConfig struct {
	Broker   string `yaml:"broker" toml:"broker"` // host:port
	ClientID string `yaml:"client_id" toml:"client_id"`
	Topic    string `yaml:"topic" toml:"topic"`
	QoS      byte   `yaml:"qos" toml:"qos"`
}

// KafkaConfig contains Kafka producer settings
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" toml:"brokers"`
	Topic   string   `yaml:"topic" toml:"topic"`
}

// HTTPConfig contains the API server settings
type HTTPConfig struct {
	Addr             string `yaml:"addr" toml:"addr"`
	ShutdownTimeoutS int    `yaml:"shutdown_timeout_s" toml:"shutdown_timeout_s"` // default: 5
}

// Publisher kinds
const (
	PublisherNone  = "none"
	PublisherMQTT  = "mqtt"
	PublisherKafka = "kafka"
)

// Payload encodings
const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// Default returns a configuration with every default filled in
func Default() *Config {
	cfg := &Config{}
	// Validate only fills defaults on an empty config
	_ = Validate(cfg)
	return cfg
}

// Load reads and parses a YAML (.yaml, .yml) or TOML (.toml) configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (must be .yaml, .yml or .toml)", ext)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// EngineConfig converts the decision section for crowdgate.NewEngine
func (c *Config) EngineConfig() crowdgate.DecisionConfig {
	weights := make([]float64, len(c.Decision.Weights))
	copy(weights, c.Decision.Weights)
	return crowdgate.DecisionConfig{
		Weights:         weights,
		GreenThreshold:  c.Decision.GreenThreshold,
		YellowThreshold: c.Decision.YellowThreshold,
	}
}

// DisplayLimits converts the display section
func (c *Config) DisplayLimits() crowdgate.DisplayLimits {
	return crowdgate.DisplayLimits{
		GreenLimit:  c.Display.GreenLimit,
		YellowLimit: c.Display.YellowLimit,
	}
}

// EstimatorConfig converts the estimator section
func (c *Config) EstimatorConfig() estimator.Config {
	fallback := estimator.DefaultFallback
	if c.Estimator.Fallback != nil {
		fallback = *c.Estimator.Fallback
	}
	return estimator.Config{
		VideoPath: c.Estimator.VideoPath,
		Window:    time.Duration(c.Estimator.WindowS * float64(time.Second)),
		SampleFPS: c.Estimator.SampleFPS,
		Scale:     c.Estimator.Scale,
		Fallback:  fallback,
		Timeout:   time.Duration(c.Estimator.TimeoutS) * time.Second,
	}
}

// ShutdownTimeout returns the HTTP graceful shutdown timeout
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.HTTP.ShutdownTimeoutS) * time.Second
}
