package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if !reflect.DeepEqual(cfg.Decision.Weights, []float64{0.35, 0.25, 0.20, 0.20}) {
		t.Errorf("weights = %v", cfg.Decision.Weights)
	}
	if cfg.Decision.GreenThreshold != 25 || cfg.Decision.YellowThreshold != 40 {
		t.Errorf("thresholds = %d/%d, want 25/40", cfg.Decision.GreenThreshold, cfg.Decision.YellowThreshold)
	}
	if cfg.Display.GreenLimit != 50 || cfg.Display.YellowLimit != 100 {
		t.Errorf("display limits = %d/%d, want 50/100", cfg.Display.GreenLimit, cfg.Display.YellowLimit)
	}
	if cfg.Input.MaxCrowd != 200 {
		t.Errorf("max_crowd = %d, want 200", cfg.Input.MaxCrowd)
	}
	if cfg.Publisher.Kind != PublisherNone || cfg.Publisher.Encoding != EncodingJSON {
		t.Errorf("publisher = %q/%q, want none/json", cfg.Publisher.Kind, cfg.Publisher.Encoding)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.ShutdownTimeout() != 5*time.Second {
		t.Errorf("http = %+v", cfg.HTTP)
	}

	est := cfg.EstimatorConfig()
	if est.Window != 5*time.Second || est.SampleFPS != 1 || est.Scale != 0.8 || est.Fallback != 50 {
		t.Errorf("estimator config = %+v", est)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "gate.yaml", `
decision:
  weights: [0.5, 0.5]
  green_threshold: 10
  yellow_threshold: 20
estimator:
  video_path: crowd.mp4
  fallback: 0
publisher:
  kind: mqtt
  mqtt:
    broker: localhost:1883
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	engineCfg := cfg.EngineConfig()
	if !reflect.DeepEqual(engineCfg.Weights, []float64{0.5, 0.5}) || engineCfg.GreenThreshold != 10 {
		t.Errorf("engine config = %+v", engineCfg)
	}
	if got := cfg.EstimatorConfig(); got.VideoPath != "crowd.mp4" || got.Fallback != 0 {
		t.Errorf("estimator config = %+v, want crowd.mp4 with fallback 0", got)
	}
	if cfg.Publisher.MQTT.ClientID != "crowd-gate" || cfg.Publisher.MQTT.Topic != "crowd/gates/crowd-gate" {
		t.Errorf("mqtt defaults = %+v", cfg.Publisher.MQTT)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "gate.toml", `
[display]
green_limit = 60
yellow_limit = 120

[publisher]
kind = "kafka"
encoding = "msgpack"

[publisher.kafka]
brokers = ["localhost:9092"]

[http]
addr = "127.0.0.1:9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if limits := cfg.DisplayLimits(); limits.GreenLimit != 60 || limits.YellowLimit != 120 {
		t.Errorf("display limits = %+v", limits)
	}
	if cfg.Publisher.Kafka.Topic != "crowd.gates" {
		t.Errorf("kafka topic = %q, want default", cfg.Publisher.Kafka.Topic)
	}
	if cfg.Publisher.Encoding != EncodingMsgpack {
		t.Errorf("publisher encoding = %q, want msgpack", cfg.Publisher.Encoding)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	// untouched sections keep their defaults
	if cfg.Decision.GreenThreshold != 25 {
		t.Errorf("green threshold = %d, want default 25", cfg.Decision.GreenThreshold)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown extension", "gate.json", `{}`, "unsupported config format"},
		{"bad yaml", "gate.yaml", "decision: [", "failed to parse config"},
		{"weights do not sum", "gate.yaml", "decision:\n  weights: [0.5, 0.2]\n", "decision"},
		{"yellow below green", "gate.yaml", "decision:\n  green_threshold: 30\n  yellow_threshold: 10\n", "decision"},
		{"mqtt without broker", "gate.yaml", "publisher:\n  kind: mqtt\n", "mqtt.broker is required"},
		{"kafka without brokers", "gate.toml", "[publisher]\nkind = \"kafka\"\n", "kafka.brokers is required"},
		{"bad encoding", "gate.yaml", "publisher:\n  encoding: xml\n", "encoding"},
		{"unknown publisher", "gate.yaml", "publisher:\n  kind: carrier-pigeon\n", "unknown kind"},
		{"bad fps", "gate.yaml", "estimator:\n  sample_fps: 100\n", "sample_fps"},
		{"negative fallback", "gate.yaml", "estimator:\n  fallback: -1\n", "fallback"},
		{"bad display", "gate.yaml", "display:\n  green_limit: 100\n  yellow_limit: 50\n", "display"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() on missing file succeeded")
	}
}
