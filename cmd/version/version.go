// Package version holds the build version and its display form.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CurrentVersion is set with -ldflags "-X gemini-chat-cli/cmd/version.CurrentVersion=v1.2.3".
var CurrentVersion = "dev"

// NormalizeVersion ensures version has a 'v' prefix, validating it with semver
// where possible. Non-semver tags are returned with the prefix added.
func NormalizeVersion(version string) string {
	if version == "" {
		return ""
	}

	normalized := strings.TrimPrefix(strings.TrimPrefix(version, "v"), "V")

	if _, err := semver.NewVersion(normalized); err != nil {
		if !strings.HasPrefix(version, "v") && !strings.HasPrefix(version, "V") {
			return "v" + version
		}
		return version
	}

	return "v" + normalized
}

// FormatVersionForDisplay normalizes a version string for consistent display.
// Examples: "v1.0.0" -> "v1.0.0", "1.0.0" -> "v1.0.0", "" -> "unknown", "dev" -> "dev"
func FormatVersionForDisplay(version string) string {
	if version == "" {
		return "unknown"
	}
	if !IsRelease(version) {
		return version
	}
	return NormalizeVersion(strings.TrimSpace(version))
}

// IsRelease reports whether version parses as semver.
func IsRelease(version string) bool {
	_, err := semver.NewVersion(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(version), "v"), "V"))
	return err == nil
}

// Prerelease reports whether version is a semver pre-release such as v1.2.0-rc.1.
func Prerelease(version string) bool {
	v, err := semver.NewVersion(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(version), "v"), "V"))
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}
