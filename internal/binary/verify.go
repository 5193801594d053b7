package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// ErrVerificationRequired is returned when verification is mandatory but the
// release publishes neither a usable signature nor a checksum.
var ErrVerificationRequired = errors.New("verification required but no signature or checksum available")

// Verifier handles cryptographic verification of release archives
type Verifier struct {
	keyringPath string
	require     bool
}

// NewVerifier creates a new verifier. keyringPath may be empty, in which
// case GPG verification is never attempted.
func NewVerifier(keyringPath string, require bool) *Verifier {
	return &Verifier{
		keyringPath: keyringPath,
		require:     require,
	}
}

// VerifyFile verifies a downloaded archive with the strongest artifact
// available. An empty signaturePath or checksumPath means that artifact
// was not published.
func (v *Verifier) VerifyFile(archivePath, signaturePath, checksumPath string) (*VerificationResult, error) {
	if signaturePath != "" && v.keyringPath != "" {
		result, err := v.verifyGPG(archivePath, signaturePath)
		if err != nil {
			return nil, fmt.Errorf("GPG verification failed: %w", err)
		}
		return result, nil
	}

	if checksumPath != "" {
		result, err := v.verifySHA256(archivePath, checksumPath)
		if err != nil {
			return nil, fmt.Errorf("SHA256 verification failed: %w", err)
		}
		return result, nil
	}

	if v.require {
		return nil, ErrVerificationRequired
	}

	return &VerificationResult{Method: VerificationNone, Success: true}, nil
}

// verifyGPG verifies a file using a detached GPG signature
func (v *Verifier) verifyGPG(archivePath, signaturePath string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		return &VerificationResult{Method: VerificationGPG, Success: false, Error: err}, err
	}

	keyring, err := v.loadKeyring()
	if err != nil {
		return fail(fmt.Errorf("load keyring: %w", err))
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fail(fmt.Errorf("open archive: %w", err))
	}
	defer archiveFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fail(fmt.Errorf("open signature: %w", err))
	}
	defer sigFile.Close()

	// Armored first, then binary
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, archiveFile, sigFile, nil)
	if err != nil {
		archiveFile.Seek(0, io.SeekStart)
		sigFile.Seek(0, io.SeekStart)
		_, err = openpgp.CheckDetachedSignature(keyring, archiveFile, sigFile, nil)
	}
	if err != nil {
		return fail(fmt.Errorf("verify signature: %w", err))
	}

	return &VerificationResult{Method: VerificationGPG, Success: true}, nil
}

// verifySHA256 verifies a file using the release checksum file
func (v *Verifier) verifySHA256(archivePath, checksumPath string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		return &VerificationResult{Method: VerificationSHA256, Success: false, Error: err}, err
	}

	actualChecksum, err := calculateSHA256(archivePath)
	if err != nil {
		return fail(fmt.Errorf("calculate checksum: %w", err))
	}

	expectedChecksum, err := findChecksum(checksumPath, filepath.Base(archivePath))
	if err != nil {
		return fail(fmt.Errorf("find checksum: %w", err))
	}

	if !strings.EqualFold(actualChecksum, expectedChecksum) {
		return fail(fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s",
			actualChecksum, expectedChecksum))
	}

	return &VerificationResult{Method: VerificationSHA256, Success: true}, nil
}

// loadKeyring loads the configured GPG keyring, armored or binary
func (v *Verifier) loadKeyring() (openpgp.EntityList, error) {
	keyringFile, err := os.Open(v.keyringPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		keyringFile.Seek(0, io.SeekStart)
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a file name in a checksum file.
// Format: "abc123def456  sweep-linux.tar.gz", optionally "*"-prefixed
// for binary mode.
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}
