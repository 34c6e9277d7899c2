// Package config defines the application configuration: logging, the
// automation switches that used to be process-wide globals, the matcher and
// driver selection, dataset capture, and the declarative state/sequence
// definitions. Everything is loaded through viper and validated before use.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/visor-cli/api/schemas"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Automation AutomationConfig `mapstructure:"automation" yaml:"automation"`
	Matcher    MatcherConfig    `mapstructure:"matcher" yaml:"matcher"`
	Driver     DriverConfig     `mapstructure:"driver" yaml:"driver"`
	Dataset    DatasetConfig    `mapstructure:"dataset" yaml:"dataset"`
	States     []StateConfig    `mapstructure:"states" yaml:"states"`
	Sequence   []StepConfig     `mapstructure:"sequence" yaml:"sequence"`
}

// LoggerConfig configures the zap logger and its file rotation.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// IllustrationMode controls when actions are illustrated.
type IllustrationMode string

const (
	IllustrateOff      IllustrationMode = "off"
	IllustrateAll      IllustrationMode = "all"
	IllustrateFailures IllustrationMode = "failures"
)

// AutomationConfig carries the framework-wide switches as an explicit
// object passed into the controller and tracker at construction, keeping
// concurrent sessions independent.
type AutomationConfig struct {
	// BuildDataset enables the dataset-capture hook.
	BuildDataset bool `mapstructure:"build_dataset" yaml:"build_dataset"`
	// Illustration selects when the illustration hook draws.
	Illustration IllustrationMode `mapstructure:"illustration" yaml:"illustration"`
	// PauseBefore and PauseAfter are the default action pauses applied
	// when a step does not override them.
	PauseBefore time.Duration `mapstructure:"pause_before" yaml:"pause_before"`
	PauseAfter  time.Duration `mapstructure:"pause_after" yaml:"pause_after"`
	// MaxSequences is the default repetition budget per action.
	MaxSequences int `mapstructure:"max_sequences" yaml:"max_sequences"`
	// ScanRate throttles per-state searches during full scans, in searches
	// per second. Zero disables throttling.
	ScanRate float64 `mapstructure:"scan_rate" yaml:"scan_rate"`
	// MonitorInterval is how often the background tracker re-verifies the
	// active states while a sequence runs. Zero disables monitoring.
	MonitorInterval time.Duration `mapstructure:"monitor_interval" yaml:"monitor_interval"`
}

// MatcherConfig selects and configures the visual matcher.
type MatcherConfig struct {
	// Kind names the matcher implementation. "mock" is built in; real
	// vision backends register under their own kinds.
	Kind string          `mapstructure:"kind" yaml:"kind"`
	Mock MockMatchConfig `mapstructure:"mock" yaml:"mock"`
}

// MockMatchConfig drives the deterministic mock matcher used in mock mode
// and in tests.
type MockMatchConfig struct {
	// Seed fixes the random source so runs are reproducible.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
	// DefaultProbability is the find probability for descriptors without
	// an explicit entry.
	DefaultProbability float64 `mapstructure:"default_probability" yaml:"default_probability"`
	// Images maps descriptor names to scripted outcomes.
	Images map[string]MockImageConfig `mapstructure:"images" yaml:"images"`
}

// MockImageConfig is the scripted outcome for one descriptor.
type MockImageConfig struct {
	Probability float64      `mapstructure:"probability" yaml:"probability"`
	Region      RegionConfig `mapstructure:"region" yaml:"region"`
	Score       float64      `mapstructure:"score" yaml:"score"`
}

// DriverConfig selects and configures the screen driver.
type DriverConfig struct {
	// Kind names the driver implementation; "cdp" drives a Chromium
	// surface over the DevTools protocol.
	Kind string `mapstructure:"kind" yaml:"kind"`
	// TargetURL is the page the CDP driver opens before automation starts.
	TargetURL string `mapstructure:"target_url" yaml:"target_url"`
	Headless  bool   `mapstructure:"headless" yaml:"headless"`
	// NavigationTimeout bounds the initial navigation.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// DatasetConfig configures the Postgres-backed dataset recorder.
type DatasetConfig struct {
	URL   string `mapstructure:"url" yaml:"url"`
	Table string `mapstructure:"table" yaml:"table"`
}

// RegionConfig is the YAML shape of a rectangle.
type RegionConfig struct {
	X int `mapstructure:"x" yaml:"x"`
	Y int `mapstructure:"y" yaml:"y"`
	W int `mapstructure:"w" yaml:"w"`
	H int `mapstructure:"h" yaml:"h"`
}

// Region converts to the schema type.
func (r RegionConfig) Region() schemas.Region {
	return schemas.NewRegion(r.X, r.Y, r.W, r.H)
}

// AnchorConfig is the YAML shape of a cross-state anchor.
type AnchorConfig struct {
	State    string `mapstructure:"state" yaml:"state"`
	Object   string `mapstructure:"object" yaml:"object"`
	Position string `mapstructure:"position" yaml:"position"`
	AddX     int    `mapstructure:"add_x" yaml:"add_x"`
	AddY     int    `mapstructure:"add_y" yaml:"add_y"`
	AddW     int    `mapstructure:"add_w" yaml:"add_w"`
	AddH     int    `mapstructure:"add_h" yaml:"add_h"`
	// AbsoluteW / AbsoluteH below zero mean "keep the adjusted size".
	AbsoluteW int `mapstructure:"absolute_w" yaml:"absolute_w"`
	AbsoluteH int `mapstructure:"absolute_h" yaml:"absolute_h"`
}

// ImageConfig declares one visual identifier of a state.
type ImageConfig struct {
	Name        string         `mapstructure:"name" yaml:"name"`
	Descriptors []string       `mapstructure:"descriptors" yaml:"descriptors"`
	Regions     []RegionConfig `mapstructure:"regions" yaml:"regions"`
	Fixed       *RegionConfig  `mapstructure:"fixed" yaml:"fixed"`
	Anchor      *AnchorConfig  `mapstructure:"anchor" yaml:"anchor"`
}

// StateConfig declares one recognizable screen of the target application.
type StateConfig struct {
	Name     string        `mapstructure:"name" yaml:"name"`
	Blocking bool          `mapstructure:"blocking" yaml:"blocking"`
	Hidden   []string      `mapstructure:"hidden" yaml:"hidden"`
	Images   []ImageConfig `mapstructure:"images" yaml:"images"`
}

// StepConfig is one entry of the automation sequence.
type StepConfig struct {
	// Action is one of find, click, type, drag.
	Action string `mapstructure:"action" yaml:"action"`
	// State and Object select the target image; Objects lists both
	// endpoints for drag steps.
	State   string   `mapstructure:"state" yaml:"state"`
	Object  string   `mapstructure:"object" yaml:"object"`
	Objects []string `mapstructure:"objects" yaml:"objects"`
	// Text is typed by type steps.
	Text string `mapstructure:"text" yaml:"text"`
	// Repetitions overrides the default sequence budget when positive.
	Repetitions int `mapstructure:"repetitions" yaml:"repetitions"`
	// PauseBefore / PauseAfter override the automation defaults when set.
	PauseBefore time.Duration `mapstructure:"pause_before" yaml:"pause_before"`
	PauseAfter  time.Duration `mapstructure:"pause_after" yaml:"pause_after"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "visor-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Automation --
	v.SetDefault("automation.build_dataset", false)
	v.SetDefault("automation.illustration", "off")
	v.SetDefault("automation.pause_before", "0s")
	v.SetDefault("automation.pause_after", "300ms")
	v.SetDefault("automation.max_sequences", 3)
	v.SetDefault("automation.scan_rate", 10.0)
	v.SetDefault("automation.monitor_interval", "0s")

	// -- Matcher --
	v.SetDefault("matcher.kind", "mock")
	v.SetDefault("matcher.mock.seed", 1)
	v.SetDefault("matcher.mock.default_probability", 1.0)

	// -- Driver --
	v.SetDefault("driver.kind", "cdp")
	v.SetDefault("driver.headless", true)
	v.SetDefault("driver.navigation_timeout", "90s")

	// -- Dataset --
	v.SetDefault("dataset.table", "action_records")
}

// NewDefaultConfig returns a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults always unmarshal; a failure here is a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that has already read its sources.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("dataset.url", "VISOR_DATASET_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Automation.MaxSequences < 0 {
		return fmt.Errorf("automation.max_sequences cannot be negative")
	}
	if c.Automation.ScanRate < 0 {
		return fmt.Errorf("automation.scan_rate cannot be negative")
	}
	switch c.Automation.Illustration {
	case IllustrateOff, IllustrateAll, IllustrateFailures, "":
	default:
		return fmt.Errorf("automation.illustration must be one of off, all, failures")
	}
	if c.Automation.BuildDataset && c.Dataset.URL == "" {
		return fmt.Errorf("dataset.url is required when automation.build_dataset is enabled")
	}
	seen := make(map[string]struct{}, len(c.States))
	for _, s := range c.States {
		if s.Name == "" {
			return fmt.Errorf("every state needs a name")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate state name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	for i, step := range c.Sequence {
		switch step.Action {
		case "find", "click", "type", "drag":
		default:
			return fmt.Errorf("sequence[%d]: unknown action %q", i, step.Action)
		}
	}
	return nil
}
