package installer

import (
	"errors"
	"fmt"
)

// ErrInstallResolution matches any failure to resolve the release to
// install while running in tolerant mode.
var ErrInstallResolution = errors.New("install resolution failed")

// InstallResolutionError reports that the binary source for an install could
// not be resolved. It unwraps to the underlying cause, usually a
// *platform.UnsupportedPlatformError.
type InstallResolutionError struct {
	Err error
}

func (e *InstallResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve release to install: %v", e.Err)
}

func (e *InstallResolutionError) Unwrap() error {
	return e.Err
}

func (e *InstallResolutionError) Is(target error) bool {
	return target == ErrInstallResolution
}
