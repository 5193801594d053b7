package binary

import (
	"time"

	"github.com/woubuc/sweep/internal/release"
)

// VerificationMethod indicates how a release archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates no verification artifact was published
	VerificationNone VerificationMethod = iota
	// VerificationGPG indicates GPG signature verification was used
	VerificationGPG
	// VerificationSHA256 indicates SHA256 checksum verification was used
	VerificationSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// DownloadResult contains information about a completed download
type DownloadResult struct {
	Asset        *release.Asset
	Path         string
	Verified     VerificationMethod
	DownloadTime time.Duration
}

// VerificationResult contains the outcome of a verification attempt
type VerificationResult struct {
	Method  VerificationMethod
	Success bool
	Error   error
}
