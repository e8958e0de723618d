package pk

import (
	"fmt"
	"runtime"
)

// OS name constants matching runtime.GOOS values.
const (
	Darwin  = "darwin"
	Linux   = "linux"
	Windows = "windows"
)

// Architecture constants matching runtime.GOARCH values.
const (
	AMD64 = "amd64"
	ARM64 = "arm64"
)

// BinaryName returns the binary name with platform-specific extension.
// On Windows, appends ".exe" suffix.
func BinaryName(name string) string {
	if runtime.GOOS == Windows {
		return name + ".exe"
	}
	return name
}

// PlatformTriple renders goos/goarch in the "<os>-<arch>" naming used by
// node tool release archives: x64 for amd64 and aarch64 for arm64.
func PlatformTriple(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case AMD64:
		arch = "x64"
	case ARM64:
		arch = "aarch64"
	}
	return fmt.Sprintf("%s-%s", goos, arch)
}
