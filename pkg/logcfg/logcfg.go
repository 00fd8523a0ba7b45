// Package logcfg finds the logging configuration for a node.
package logcfg

import (
	"os"

	logs "github.com/danmuck/smplog"
)

const envConfigPath = "SMPLOG_CONFIG"

var candidates = []string{
	"./smplog.config.toml",
	"./local/smplog.config.toml",
}

// Load returns the first readable config among $SMPLOG_CONFIG and the
// candidate files, otherwise defaults.
func Load() logs.Config {
	paths := candidates
	if path := os.Getenv(envConfigPath); path != "" {
		paths = append([]string{path}, candidates...)
	}

	for _, path := range paths {
		if cfg, err := logs.ConfigFromFile(path); err == nil {
			return cfg
		}
	}
	return logs.DefaultConfig()
}
