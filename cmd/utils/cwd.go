package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// OverrideCwd is set from the global --cwd flag.
var OverrideCwd string

// GetEffectiveCWD returns the directory used for config and .env lookup:
// the absolute form of --cwd when given, else the process working directory.
func GetEffectiveCWD() string {
	dir := strings.TrimSpace(OverrideCwd)
	if dir == "" {
		if wd, err := os.Getwd(); err == nil && wd != "" {
			return wd
		}
		return "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
