package platform

import (
	"strings"
)

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   "debian",
	"ubuntu":   "debian",
	"rhel":     "rhel",
	"centos":   "rhel",
	"rocky":    "rhel",
	"fedora":   "fedora",
	"suse":     "suse",
	"opensuse": "suse",
	"arch":     "arch",
	"manjaro":  "arch",
	"alpine":   "alpine",
	"gentoo":   "gentoo",
}

// HostOSType converts a GOOS value to the OS type naming used by ResolveLabel.
// Unknown values are returned unchanged.
func HostOSType(goos string) string {
	switch goos {
	case "linux":
		return OSTypeLinux
	case "darwin":
		return OSTypeDarwin
	case "windows":
		return OSTypeWindows
	default:
		return goos
	}
}

// HostArch converts a GOARCH value to the architecture naming used by
// ResolveLabel. Unknown values are returned unchanged.
func HostArch(goarch string) string {
	switch goarch {
	case "amd64":
		return ArchX64
	case "386":
		return ArchIA32
	case "arm64":
		return ArchARM64
	default:
		return goarch
	}
}

func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	if canonical, ok := familyMap[normalizePlatform(family)]; ok {
		return canonical
	}
	return "unknown"
}
