package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves the runtime directory before any config struct is
// parsed, so the .env file inside it can seed the environment first.
func GetRuntimePath() string {
	path := os.Getenv("RIZZA_RUNTIME_PATH")
	if path == "" {
		path = ".rizza"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
