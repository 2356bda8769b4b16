package postoffice

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerSpec names one server rank's node id and dial-back address, as
// they appear in a cluster.yaml bootstrap file. Rank is implied by
// position in Servers.
type ServerSpec struct {
	ID   string `yaml:"id"`
	Addr string `yaml:"addr"`
}

// ClusterConfig is the static bootstrap description of a parameter
// service deployment: its server ranks, the slicing policy workers
// should use against them, and the size of the key space they partition.
// It plays the role torua's runtime coordinator registration played, but
// as a file read once at startup rather than a live HTTP handshake: the
// parameter service's range table is fixed for the run, so there is
// nothing to negotiate.
type ClusterConfig struct {
	Servers     []ServerSpec `yaml:"servers"`
	KeySpaceEnd uint64       `yaml:"key_space_end"`
	Slicer      string       `yaml:"slicer"`  // "range" or "modulo"
	Verbose     int          `yaml:"verbose"` // 0, 1, or 2
}

// LoadConfig reads and validates a cluster.yaml bootstrap file.
func LoadConfig(path string) (*ClusterConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("postoffice: read config: %w", err)
	}
	var cfg ClusterConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("postoffice: parse config: %w", err)
	}
	if len(cfg.Servers) == 0 {
		return nil, errors.New("postoffice: config lists no servers")
	}
	if cfg.KeySpaceEnd == 0 {
		cfg.KeySpaceEnd = math.MaxUint32
	}
	switch cfg.Slicer {
	case "", "range":
		cfg.Slicer = "range"
	case "modulo":
	default:
		return nil, fmt.Errorf("postoffice: unknown slicer %q, want %q or %q", cfg.Slicer, "range", "modulo")
	}
	if cfg.Verbose < 0 || cfg.Verbose > 2 {
		return nil, fmt.Errorf("postoffice: verbose must be 0, 1, or 2, got %d", cfg.Verbose)
	}
	return &cfg, nil
}
