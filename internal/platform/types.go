// Package platform detects the host operating system and CPU architecture
// and maps them to the release-asset labels sweep publishes binaries under.
//
// Detection uses runtime.GOOS/GOARCH and, on Linux, gopsutil for
// distribution details. The same information is injected as a read-only
// table into Lua configuration files.
package platform

import "context"

// Release-asset labels.
const (
	LabelWin64 = "win64"
	LabelWin32 = "win32"
	LabelLinux = "linux"
	LabelMacOS = "macos"
)

// OS type names, as reported by the host runtime the release labels were
// originally defined against.
const (
	OSTypeDarwin  = "Darwin"
	OSTypeLinux   = "Linux"
	OSTypeWindows = "Windows_NT"
)

// Architecture names used by the resolver.
const (
	ArchX64   = "x64"
	ArchX86   = "x86"
	ArchIA32  = "ia32"
	ArchARM64 = "arm64"
)

// Info contains platform detection information.
type Info struct {
	OS       string // GOOS: "linux", "darwin", "windows"
	Arch     string // GOARCH: "amd64", "386", "arm64"
	OSType   string // resolver naming: "Linux", "Darwin", "Windows_NT"
	ArchName string // resolver naming: "x64", "ia32", "arm64"
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information if this is a Linux platform.
// Returns nil for non-Linux platforms or if distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

// Label resolves the release-asset label for this platform.
func (i *Info) Label() (string, error) {
	return ResolveLabel(i.OSType, i.ArchName)
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
