package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// Cascade names selectable via STRATEGY_CASCADE.
const (
	CascadeBalanced = "balanced"
	CascadeBandit   = "bandit"
)

// Config holds all runtime settings. Every field can be set through the
// environment; an optional YAML file provides the same keys for experiment
// manifests.
type Config struct {
	SchedulerName     string
	ComponentSelector string

	CPULowThreshold  float64
	CPUHighThreshold float64
	StrategyCooldown time.Duration
	Cascade          string

	// FixedStrategy pins one policy and disables the adaptive selector.
	// Empty means adaptive mode.
	FixedStrategy types.PolicyType

	PollInterval    time.Duration
	ErrorBackoff    time.Duration
	MetricsCacheTTL time.Duration

	MetricsAddr string
	LogLevel    string
	LogJSON     bool

	// DecisionLogFile, when set, receives a YAML dump of all decisions and
	// strategy switches on shutdown for post-hoc analysis.
	DecisionLogFile string
}

// Load reads configuration from the environment, with defaults matching the
// deployed scheduler, optionally merged with a YAML config file.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("scheduler_name", "adaptive-scheduler")
	v.SetDefault("component_selector", "component=taskmanager")
	v.SetDefault("cpu_low_threshold", 40.0)
	v.SetDefault("cpu_high_threshold", 80.0)
	v.SetDefault("strategy_cooldown", 30)
	v.SetDefault("strategy_cascade", CascadeBalanced)
	v.SetDefault("fixed_strategy", "")
	v.SetDefault("poll_interval", 2)
	v.SetDefault("error_backoff", 5)
	v.SetDefault("metrics_cache_ttl", 5)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("decision_log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		SchedulerName:     v.GetString("scheduler_name"),
		ComponentSelector: v.GetString("component_selector"),
		CPULowThreshold:   v.GetFloat64("cpu_low_threshold"),
		CPUHighThreshold:  v.GetFloat64("cpu_high_threshold"),
		StrategyCooldown:  time.Duration(v.GetInt("strategy_cooldown")) * time.Second,
		Cascade:           v.GetString("strategy_cascade"),
		PollInterval:      time.Duration(v.GetInt("poll_interval")) * time.Second,
		ErrorBackoff:      time.Duration(v.GetInt("error_backoff")) * time.Second,
		MetricsCacheTTL:   time.Duration(v.GetInt("metrics_cache_ttl")) * time.Second,
		MetricsAddr:       v.GetString("metrics_addr"),
		LogLevel:          v.GetString("log_level"),
		LogJSON:           v.GetBool("log_json"),
		DecisionLogFile:   v.GetString("decision_log_file"),
	}

	if raw := v.GetString("fixed_strategy"); raw != "" {
		fixed, err := types.ParsePolicyType(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FIXED_STRATEGY: %w", err)
		}
		cfg.FixedStrategy = fixed
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SchedulerName == "" {
		return fmt.Errorf("scheduler name must not be empty")
	}
	if c.CPULowThreshold < 0 || c.CPUHighThreshold > 100 ||
		c.CPULowThreshold >= c.CPUHighThreshold {
		return fmt.Errorf("invalid CPU thresholds: low=%.1f high=%.1f",
			c.CPULowThreshold, c.CPUHighThreshold)
	}
	if c.Cascade != CascadeBalanced && c.Cascade != CascadeBandit {
		return fmt.Errorf("unknown STRATEGY_CASCADE %q", c.Cascade)
	}
	if c.StrategyCooldown < 0 {
		return fmt.Errorf("STRATEGY_COOLDOWN must not be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.ErrorBackoff <= 0 {
		return fmt.Errorf("ERROR_BACKOFF must be positive")
	}
	return nil
}
