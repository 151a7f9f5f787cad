// Package config holds process-wide checker mode flags and the loadable
// project configuration file, following the pattern of funxy's
// internal/config/constants.go (package-level mode switches flipped once
// at startup).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot, when true, normalizes auto-generated type-variable and skolem
// names in String() output (e.g. "t14" -> "t?") so test/LSP output is
// deterministic. Mirrors funxy's IsTestMode/IsLSPMode pair, collapsed into
// one flag since both callers want the same normalization.
var Snapshot = false

// LSPMode indicates the checker is running inside a language server host.
// Nothing in this module reads it; display strings are the same either way.
var LSPMode = false

// Version is the checker's version, set at build time via -ldflags.
var Version = "0.1.0"

// CheckerOptions is the shape of a project's .escalier.yaml config file.
type CheckerOptions struct {
	// Strict makes escc exit with status 1 when any warning (e.g. a
	// non-exhaustive match) is reported; the warning's own severity, and
	// whether it aborts its statement, are unchanged.
	Strict bool `yaml:"strict"`
	// Include lists glob patterns of source files to check. escc does not
	// read it: the files checked are the .esc files under the paths given
	// on the command line.
	Include []string `yaml:"include"`
	// Exclude lists glob patterns to skip even if matched by Include. escc
	// does not read it.
	Exclude []string `yaml:"exclude"`
	// LibTarget names the target TypeScript lib surface (e.g. "es2020").
	// It is loaded but not used when resolving globals.
	LibTarget string `yaml:"libTarget"`
}

// DefaultOptions returns the options used when no config file is present.
func DefaultOptions() CheckerOptions {
	return CheckerOptions{
		Strict:    false,
		Include:   []string{"**/*.esc"},
		LibTarget: "es2020",
	}
}

// LoadOptions reads and parses a .escalier.yaml file at path. A missing
// file is not an error: DefaultOptions() is returned instead.
func LoadOptions(path string) (CheckerOptions, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return opts, nil
}
