package utils

import (
	"fmt"
	"os"
	"path"
)

// GetConfigDir returns the path to the kernagent configuration directory.
// The directory is located inside the user's configuration directory
// as <UserConfigDir>/kernagent, unless overridden by KERNAGENT_CONFIG_DIR.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("KERNAGENT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return path.Join(cfg, "kernagent"), nil
}
