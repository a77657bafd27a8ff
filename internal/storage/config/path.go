// Package config reads and writes the YAML configuration: config.yaml and
// the per-collection files below collections/.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"penumbra/internal/domain"
)

// ParseConfigPath validates a user-supplied YAML file path, as accepted by
// collection import, and returns it cleaned. The path must be absolute,
// free of parent traversal and name an existing .yaml or .yml file.
func ParseConfigPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", domain.ErrInvalidConfig)
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: path must be absolute", domain.ErrInvalidConfig)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: path contains parent traversal", domain.ErrInvalidConfig)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", domain.ErrInvalidConfig, path)
		}
		return "", fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidConfig, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return "", fmt.Errorf("%w: %s is not a YAML file", domain.ErrInvalidConfig, path)
	}

	return filepath.Clean(path), nil
}
