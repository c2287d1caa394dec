package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "goe") {
		t.Errorf("GetConfigDir() = %v, should contain 'goe'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") && os.Getenv("XDG_CONFIG_HOME") == "" {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Chargers == nil {
		t.Error("NewRegistry().Chargers should not be nil")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Chargers["garage"] = &Charger{Host: "192.168.1.40"}

	if got := reg.Resolve("garage"); got != "192.168.1.40" {
		t.Errorf("Resolve(garage) = %v, want 192.168.1.40", got)
	}

	// Unregistered names pass through unchanged
	if got := reg.Resolve("192.168.1.50"); got != "192.168.1.50" {
		t.Errorf("Resolve(raw host) = %v, want 192.168.1.50", got)
	}

	if got := reg.Resolve("wallbox.fritz.box"); got != "wallbox.fritz.box" {
		t.Errorf("Resolve(hostname) = %v, want wallbox.fritz.box", got)
	}
}

func TestRegistryYAMLRoundTrip(t *testing.T) {
	reg := NewRegistry()
	lastSeen := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	reg.Chargers["garage"] = &Charger{
		Host:     "192.168.1.40",
		Label:    "11 kW garage",
		LastSeen: lastSeen,
	}

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	if loaded.Version != 1 {
		t.Errorf("Version = %v, want 1", loaded.Version)
	}

	charger := loaded.Chargers["garage"]
	if charger == nil {
		t.Fatal("charger 'garage' missing after round trip")
	}
	if charger.Host != "192.168.1.40" {
		t.Errorf("Host = %v, want 192.168.1.40", charger.Host)
	}
	if charger.Label != "11 kW garage" {
		t.Errorf("Label = %v, want '11 kW garage'", charger.Label)
	}
	if !charger.LastSeen.Equal(lastSeen) {
		t.Errorf("LastSeen = %v, want %v", charger.LastSeen, lastSeen)
	}
}

func TestRegistrySaveAndReload(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("test relies on XDG_CONFIG_HOME")
	}

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	reg := NewRegistry()
	reg.Chargers["carport"] = &Charger{Host: "192.168.1.41"}

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// File should exist with user-only permissions
	configPath := filepath.Join(tmpDir, "goe", "config.yaml")
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("config file missing after Save(): %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}

	if loaded.Resolve("carport") != "192.168.1.41" {
		t.Errorf("Resolve(carport) after reload = %v, want 192.168.1.41", loaded.Resolve("carport"))
	}
}

func TestLoadRegistry_MissingFileIsDefault(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("test relies on XDG_CONFIG_HOME")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}

	if reg.Version != 1 {
		t.Errorf("Version = %v, want 1", reg.Version)
	}
	if len(reg.Chargers) != 0 {
		t.Errorf("Chargers = %v, want empty", reg.Chargers)
	}
}
