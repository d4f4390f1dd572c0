package version

import (
	"fmt"
	"sync"
)

const (
	appMajor uint = 1
	appMinor uint = 0
	appPatch uint = 0
)

// appBuild can be set at link time with
// '-ldflags "-X github.com/RiseVision/rise-node/version.appBuild=foo"'.
// Build tags with characters outside [0-9A-Za-z-] are dropped.
var appBuild string

var (
	version     string
	versionOnce sync.Once
)

// Version returns the node version, in the form major.minor.patch[-build]
func Version() string {
	versionOnce.Do(func() {
		version = formatVersion(appMajor, appMinor, appPatch, appBuild)
	})
	return version
}

func formatVersion(major, minor, patch uint, build string) string {
	base := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if build == "" || !isValidBuild(build) {
		return base
	}
	return base + "-" + build
}

func isValidBuild(build string) bool {
	for _, r := range build {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
