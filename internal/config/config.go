// Package config resolves the engine's runtime settings from the
// environment. There is no config file at this level — project-scoped
// configuration lives in the .mdt.yaml descriptors, and everything else
// is an environment variable so the server and the CLI pick up the same
// settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by Load.
const (
	// EnvScanRoots is a colon-separated list of directories (or glob
	// patterns) scanned for project descriptors.
	EnvScanRoots = "MDT_SCAN_ROOTS"
	// EnvRegistryDir overrides the project registry directory.
	EnvRegistryDir = "MDT_REGISTRY_DIR"
	// EnvDebug enables debug logging when set to a non-empty value.
	EnvDebug = "MDT_DEBUG"
)

// Config is the resolved engine configuration.
type Config struct {
	// ScanRoots are the directories scanned for projects. Defaults to
	// the current working directory.
	ScanRoots []string
	// RegistryDir is where registered-project entries live.
	RegistryDir string
	// Debug enables debug-level logging.
	Debug bool
}

// Load resolves the configuration from the environment.
// registryDefault supplies the registry location when EnvRegistryDir is
// unset (the project package knows the XDG chain; config does not).
func Load(registryDefault func() string) *Config {
	cfg := &Config{
		RegistryDir: registryDefault(),
		Debug:       os.Getenv(EnvDebug) != "",
	}
	if dir := os.Getenv(EnvRegistryDir); dir != "" {
		cfg.RegistryDir = dir
	}

	roots := os.Getenv(EnvScanRoots)
	if roots == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.ScanRoots = []string{cwd}
		}
		return cfg
	}
	for _, root := range strings.Split(roots, ":") {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		cfg.ScanRoots = append(cfg.ScanRoots, expandHome(root))
	}
	return cfg
}

// Issues reports configuration problems worth surfacing to the user:
// scan roots that do not exist or are not directories. Glob roots are
// skipped — matching nothing today is not an error.
func (c *Config) Issues() []string {
	var issues []string
	for _, root := range c.ScanRoots {
		if strings.ContainsAny(root, "*?[{") {
			continue
		}
		info, err := os.Stat(root)
		switch {
		case err != nil:
			issues = append(issues, fmt.Sprintf("scan root %s: %v", root, err))
		case !info.IsDir():
			issues = append(issues, fmt.Sprintf("scan root %s is not a directory", root))
		}
	}
	return issues
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
