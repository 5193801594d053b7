package platform

import (
	"errors"
	"fmt"
)

// IssuesURL is where users are asked to report unsupported platforms.
const IssuesURL = "https://github.com/woubuc/sweep/issues"

// ErrUnsupportedPlatform is matched by every UnsupportedPlatformError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError reports an OS/architecture pair that has no
// published release asset.
type UnsupportedPlatformError struct {
	OSType string
	Arch   string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("Unsupported platform: %s %s. Please create an issue at %s", e.OSType, e.Arch, IssuesURL)
}

// Is reports whether target is ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// ResolveLabel maps an OS type and architecture to a release-asset label.
//
// Every architecture other than x64 on Windows resolves to the 32-bit build.
func ResolveLabel(osType, arch string) (string, error) {
	switch osType {
	case OSTypeWindows:
		if arch == ArchX64 {
			return LabelWin64, nil
		}
		return LabelWin32, nil
	case OSTypeLinux:
		if arch == ArchX64 {
			return LabelLinux, nil
		}
	case OSTypeDarwin:
		if arch == ArchX64 {
			return LabelMacOS, nil
		}
	}

	return "", &UnsupportedPlatformError{OSType: osType, Arch: arch}
}
