package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckConfigCompatibility checks whether a config file written for
// configVersion can be read by a binary at appVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 0.1.0 reads a 0.1.4 config)
func CheckConfigCompatibility(appVersion, configVersion string) error {
	appVersion = strings.TrimPrefix(appVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if appVersion == "main" || configVersion == "main" {
		return nil
	}

	appSemver, err := semver.NewVersion(appVersion)
	if err != nil {
		return fmt.Errorf("invalid app version '%s': %w", appVersion, err)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	if appSemver.Major() != configSemver.Major() {
		return fmt.Errorf("major version mismatch: binary is %d.x.x but config requires %d.x.x",
			appSemver.Major(), configSemver.Major())
	}

	if appSemver.Minor() != configSemver.Minor() {
		return fmt.Errorf("minor version mismatch: binary is %d.%d.x but config requires %d.%d.x",
			appSemver.Major(), appSemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
