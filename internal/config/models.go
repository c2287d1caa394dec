package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined nicknames for chargers so CLI commands can
// address devices by name instead of IP address.
type Registry struct {
	Version  int                 `yaml:"version"`
	Chargers map[string]*Charger `yaml:"chargers,omitempty"` // Keyed by nickname
}

// Charger represents user-defined metadata for a single go-eCharger device.
// This is purely client-side information - the device itself stores nothing.
type Charger struct {
	Host     string    `yaml:"host"`                // Hostname or IP address on the local network
	Label    string    `yaml:"label,omitempty"`     // Optional free-form description
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful connection time
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Chargers: make(map[string]*Charger),
	}
}

// Resolve translates a nickname into the charger host. Arguments that are
// not registered nicknames are returned unchanged so commands accept raw
// hostnames and IP addresses too.
func (r *Registry) Resolve(nameOrHost string) string {
	if charger, ok := r.Chargers[nameOrHost]; ok {
		return charger.Host
	}
	return nameOrHost
}
