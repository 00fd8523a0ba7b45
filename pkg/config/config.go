// Package config reads node configuration from the environment and an
// optional cluster file.
package config

import (
	"errors"
	"fmt"

	"github.com/spencer-p/ordering/pkg/util"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

const (
	Vector   = "vector"
	Matrix   = "matrix"
	Snapshot = "snapshot"
)

var (
	ErrNoPeers  = errors.New("No peer addresses configured")
	ErrBadClock = errors.New("Unknown clock kind")
)

type Config struct {
	// Port to serve the control API on
	Port string `envconfig:"PORT" required:"true"`

	// This process's index into the peer list
	Pid int `envconfig:"PID" required:"true"`

	// Number of processes. Zero means the length of the peer list.
	NProcs int `envconfig:"NPROCS"`

	// Comma separated transport addresses, one per process
	Peers string `envconfig:"PEERS"`

	// One of vector, matrix or snapshot
	Clock string `envconfig:"CLOCK" default:"snapshot"`

	// Workload steps per second. Zero disables the workload.
	Rate      float64 `envconfig:"RATE"`
	SendRatio float64 `envconfig:"SEND_RATIO" default:"0.5"`

	// TOML file whose peer list overrides PEERS
	ClusterFile string `envconfig:"CLUSTER_FILE"`
}

// Cluster is the layout of a cluster file.
type Cluster struct {
	Peers []string `toml:"peers"`
}

// Load processes the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}

	switch c.Clock {
	case Vector, Matrix, Snapshot:
	default:
		return c, fmt.Errorf("%w: %q", ErrBadClock, c.Clock)
	}

	addrs, err := c.Addrs()
	if err != nil {
		return c, err
	}
	if c.NProcs == 0 {
		c.NProcs = len(addrs)
	} else if c.NProcs != len(addrs) {
		return c, fmt.Errorf("NPROCS is %d but %d peers are configured", c.NProcs, len(addrs))
	}
	if c.Pid < 0 || c.Pid >= c.NProcs {
		return c, fmt.Errorf("PID %d is outside a cluster of %d", c.Pid, c.NProcs)
	}
	return c, nil
}

// Addrs returns the transport address of every process, indexed by pid.
func (c Config) Addrs() ([]string, error) {
	var addrs []string
	if c.ClusterFile != "" {
		var cluster Cluster
		if _, err := toml.DecodeFile(c.ClusterFile, &cluster); err != nil {
			return nil, fmt.Errorf("failed to read cluster file: %w", err)
		}
		addrs = cluster.Peers
	} else if c.Peers != "" {
		var err error
		addrs, err = util.CSVToSlice(c.Peers)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PEERS: %w", err)
		}
	}

	if len(addrs) == 0 {
		return nil, ErrNoPeers
	}
	return addrs, nil
}
