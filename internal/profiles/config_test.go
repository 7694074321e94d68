package profiles

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROAST_PROFILES_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	profile, err := cfg.Resolve("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if !profile.SessionConfig().Valid() {
		t.Fatalf("default profile %+v is not a valid session config", profile)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
default: espresso
profiles:
  espresso:
    duration_minutes: 14
    interval_seconds: 20
    charge_temp: 98.5
  filter:
    duration_minutes: 10
    interval_seconds: 30
    charge_temp: 90
alarms:
  - name: first-crack watch
    operator: ">"
    threshold: 196
    severity: warning
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROAST_PROFILES_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	profile, err := cfg.Resolve("espresso")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profile.DurationMinutes != 14 || profile.IntervalSeconds != 20 || profile.ChargeTemp != 98.5 {
		t.Fatalf("espresso profile = %+v", profile)
	}
	if _, err := cfg.Resolve("missing"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if len(cfg.Alarms) != 1 || cfg.Alarms[0].Threshold != 196 {
		t.Fatalf("alarms = %+v, want one rule at 196", cfg.Alarms)
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
default: broken
profiles:
  broken:
    duration_minutes: 0
    interval_seconds: 30
    charge_temp: 95
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROAST_PROFILES_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid profile")
	}
}
