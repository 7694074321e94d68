package profiles

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	session "roastlog/internal/session/domain"
)

// Profile is a named roast preset used to prefill session parameters.
type Profile struct {
	DurationMinutes int     `yaml:"duration_minutes"`
	IntervalSeconds int     `yaml:"interval_seconds"`
	ChargeTemp      float64 `yaml:"charge_temp"`
}

// SessionConfig converts the preset into a session configuration.
func (p Profile) SessionConfig() session.Config {
	return session.Config{
		DurationMinutes: p.DurationMinutes,
		IntervalSeconds: p.IntervalSeconds,
		StartingReading: p.ChargeTemp,
	}
}

// AlarmRule is a yaml-declared temperature alarm threshold.
type AlarmRule struct {
	Name      string  `yaml:"name"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
	Severity  string  `yaml:"severity"`
}

// Config holds the roast presets and alarm rules for the service.
type Config struct {
	Default  string             `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
	Alarms   []AlarmRule        `yaml:"alarms"`
}

// Load reads configuration from the yaml file named by ROAST_PROFILES_CONFIG,
// falling back to an env-derived default profile when no file is set.
func Load() (Config, error) {
	cfg := Config{
		Default: "standard",
		Profiles: map[string]Profile{
			"standard": {
				DurationMinutes: getenvIntDefault("ROAST_DEFAULT_DURATION_MINUTES", 12),
				IntervalSeconds: getenvIntDefault("ROAST_DEFAULT_INTERVAL_SECONDS", 30),
				ChargeTemp:      getenvFloatDefault("ROAST_DEFAULT_CHARGE_TEMP", 95),
			},
		},
	}

	if path := os.Getenv("ROAST_PROFILES_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Default == "" {
		return cfg, fmt.Errorf("profiles: default profile name required")
	}
	if _, ok := cfg.Profiles[cfg.Default]; !ok {
		return cfg, fmt.Errorf("profiles: default profile %q not defined", cfg.Default)
	}
	for name, profile := range cfg.Profiles {
		if !profile.SessionConfig().Valid() {
			return cfg, fmt.Errorf("profiles: profile %q is not a valid session configuration", name)
		}
	}
	return cfg, nil
}

// Resolve returns the named profile, or the default when name is empty.
func (c Config) Resolve(name string) (Profile, error) {
	if name == "" {
		name = c.Default
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profiles: unknown profile %q", name)
	}
	return profile, nil
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
