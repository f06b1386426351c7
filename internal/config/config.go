// Package config loads the node's TOML configuration surface: identity,
// network addresses, seed peers, and consensus timing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults match spec §6's configuration surface.
const (
	DefaultHost               = "127.0.0.1"
	DefaultHeartbeatInterval  = 50 * time.Millisecond
	DefaultElectionTimeoutMin = 150 * time.Millisecond
	DefaultElectionTimeoutMax = 300 * time.Millisecond
)

// Consensus holds the Raft-style timing knobs.
type Consensus struct {
	HeartbeatIntervalMs  uint64 `toml:"heartbeat_interval_ms"`
	ElectionTimeoutMinMs uint64 `toml:"election_timeout_min_ms"`
	ElectionTimeoutMaxMs uint64 `toml:"election_timeout_max_ms"`
}

// Config is the node's TOML configuration.
type Config struct {
	ID        string            `toml:"id"`
	Name      string            `toml:"name"`
	Host      string            `toml:"host"`
	PeerPort  uint16            `toml:"peer_port"`
	UserPort  uint16            `toml:"user_port"`
	Seeds     map[string]string `toml:"seeds"`
	Consensus Consensus         `toml:"consensus"`
}

// Default returns a Config with every default filled in and no seeds,
// id, name, or ports set.
func Default() Config {
	return Config{
		Host: DefaultHost,
		Consensus: Consensus{
			HeartbeatIntervalMs:  uint64(DefaultHeartbeatInterval / time.Millisecond),
			ElectionTimeoutMinMs: uint64(DefaultElectionTimeoutMin / time.Millisecond),
			ElectionTimeoutMaxMs: uint64(DefaultElectionTimeoutMax / time.Millisecond),
		},
	}
}

// Load reads and parses a TOML config file at path, filling in defaults
// for anything left unset.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw TOML bytes into a Config, applying defaults and
// validating the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Consensus.HeartbeatIntervalMs == 0 {
		cfg.Consensus.HeartbeatIntervalMs = uint64(DefaultHeartbeatInterval / time.Millisecond)
	}
	if cfg.Consensus.ElectionTimeoutMinMs == 0 {
		cfg.Consensus.ElectionTimeoutMinMs = uint64(DefaultElectionTimeoutMin / time.Millisecond)
	}
	if cfg.Consensus.ElectionTimeoutMaxMs == 0 {
		cfg.Consensus.ElectionTimeoutMaxMs = uint64(DefaultElectionTimeoutMax / time.Millisecond)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants spec §6 requires: peer_port and
// user_port must differ. The check applies only when peer_port is set
// (non-zero); two unset ports are accepted.
func (c Config) Validate() error {
	if c.PeerPort != 0 && c.PeerPort == c.UserPort {
		return fmt.Errorf("config: peer_port and user_port must differ, both %d", c.PeerPort)
	}
	return nil
}
