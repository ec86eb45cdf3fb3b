package config

import (
	"fmt"
	"regexp"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/estimator"
)

var topicPattern = regexp.MustCompile(`^[A-Za-z0-9._\-]+$`)

// Validate fills defaults and checks the configuration
func Validate(cfg *Config) error {
	// Decision defaults
	if len(cfg.Decision.Weights) == 0 {
		cfg.Decision.Weights = crowdgate.DefaultDecisionConfig().Weights
	}
	if cfg.Decision.GreenThreshold == 0 && cfg.Decision.YellowThreshold == 0 {
		cfg.Decision.GreenThreshold = crowdgate.GreenThreshold
		cfg.Decision.YellowThreshold = crowdgate.YellowThreshold
	}
	if err := cfg.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("decision: %w", err)
	}

	// Display defaults
	if cfg.Display.GreenLimit == 0 && cfg.Display.YellowLimit == 0 {
		cfg.Display.GreenLimit = crowdgate.GreenLimit
		cfg.Display.YellowLimit = crowdgate.YellowLimit
	}
	if cfg.Display.GreenLimit < 0 || cfg.Display.YellowLimit < cfg.Display.GreenLimit {
		return fmt.Errorf("display: limits must satisfy 0 <= green_limit <= yellow_limit, got %d/%d",
			cfg.Display.GreenLimit, cfg.Display.YellowLimit)
	}

	// Input defaults
	if cfg.Input.MaxCrowd == 0 {
		cfg.Input.MaxCrowd = 200
	}
	if cfg.Input.MaxCrowd < 0 {
		return fmt.Errorf("input.max_crowd must be > 0")
	}

	if err := validateEstimator(&cfg.Estimator); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}

	if err := validatePublisher(&cfg.Publisher); err != nil {
		return fmt.Errorf("publisher: %w", err)
	}

	// HTTP defaults
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ShutdownTimeoutS <= 0 {
		cfg.HTTP.ShutdownTimeoutS = 5
	}

	return nil
}

func validateEstimator(e *EstimatorConfig) error {
	if e.WindowS == 0 {
		e.WindowS = estimator.DefaultWindow.Seconds()
	}
	if e.SampleFPS == 0 {
		e.SampleFPS = estimator.DefaultSampleFPS
	}
	if e.Scale == 0 {
		e.Scale = estimator.DefaultScale
	}
	if e.Fallback == nil {
		fallback := estimator.DefaultFallback
		e.Fallback = &fallback
	}
	if e.TimeoutS == 0 {
		e.TimeoutS = int(estimator.DefaultTimeout.Seconds())
	}

	if e.WindowS < 0 {
		return fmt.Errorf("window_s must be > 0")
	}
	if e.SampleFPS < 0.1 || e.SampleFPS > 30 {
		return fmt.Errorf("sample_fps must be between 0.1 and 30, got %v", e.SampleFPS)
	}
	if e.Scale < 0 {
		return fmt.Errorf("scale must be > 0")
	}
	if *e.Fallback < 0 {
		return fmt.Errorf("fallback must be >= 0, got %d", *e.Fallback)
	}
	if e.TimeoutS < 0 {
		return fmt.Errorf("timeout_s must be >= 0")
	}
	return nil
}

func validatePublisher(p *PublisherConfig) error {
	if p.Kind == "" {
		p.Kind = PublisherNone
	}
	if p.Encoding == "" {
		p.Encoding = EncodingJSON
	}
	if p.Encoding != EncodingJSON && p.Encoding != EncodingMsgpack {
		return fmt.Errorf("encoding %q must be json or msgpack", p.Encoding)
	}

	switch p.Kind {
	case PublisherNone:
		return nil

	case PublisherMQTT:
		if p.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required")
		}
		if p.MQTT.ClientID == "" {
			p.MQTT.ClientID = "crowd-gate"
		}
		if p.MQTT.Topic == "" {
			p.MQTT.Topic = fmt.Sprintf("crowd/gates/%s", p.MQTT.ClientID)
		}
		if p.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", p.MQTT.QoS)
		}
		return nil

	case PublisherKafka:
		if len(p.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required")
		}
		if p.Kafka.Topic == "" {
			p.Kafka.Topic = "crowd.gates"
		}
		if !topicPattern.MatchString(p.Kafka.Topic) {
			return fmt.Errorf("kafka.topic %q must match [A-Za-z0-9._-]+", p.Kafka.Topic)
		}
		return nil

	default:
		return fmt.Errorf("unknown kind %q (must be none, mqtt or kafka)", p.Kind)
	}
}
