// Package binary downloads, verifies and installs the prebuilt swp
// executable published with each sweep release, and removes it again.
//
// # Verification Strategy
//
// Release archives are checked with the strongest artifact available:
//
//  1. GPG signature (<archive>.asc) against a configured keyring
//  2. SHA256 checksum from the release's checksums.txt
//  3. Nothing, unless RequireVerification is set
//
// A signature or checksum that is present but does not match is always fatal.
//
// # Usage
//
//	asset, _ := release.NewAsset("", "1.2.0", "swp", "linux")
//	mgr, err := binary.NewManager(binary.Config{
//	    InstallDir: "/usr/local/lib/node_modules/swp/bin",
//	    CacheDir:   "/home/user/.cache/sweep",
//	    Asset:      asset,
//	})
//	if err != nil {
//	    return err
//	}
//	err = mgr.Install(ctx)
//
// # Architecture
//
//   - Manager: orchestration of download, verify, install and uninstall
//   - Downloader: HTTP download with retry logic and caching
//   - Verifier: GPG and SHA256 verification
//   - Extractor: archive extraction (tar.gz)
package binary
