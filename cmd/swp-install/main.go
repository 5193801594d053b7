// Command swp-install is the npm installer shim for sweep. It is invoked by
// the package's lifecycle scripts with "install" or "uninstall" and places
// or removes the prebuilt swp executable for the host platform.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/woubuc/sweep/internal/binary"
	"github.com/woubuc/sweep/internal/installer"
	"github.com/woubuc/sweep/internal/logging"
	"github.com/woubuc/sweep/internal/platform"
	"github.com/woubuc/sweep/internal/release"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		detector:  platform.NewDetector(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		newBinary: newManager,
	}
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	manifest            string
	version             string
	installDir          string
	cacheDir            string
	releasesHost        string
	keyring             string
	tolerant            bool
	force               bool
	requireVerification bool
	debug               bool
	info                bool
	envHelp             bool
}

// binaryFactory builds the install collaborator from the final settings.
type binaryFactory func(s *installer.Settings, force bool, asset *release.Asset, log *zerolog.Logger) (installer.Binary, error)

type app struct {
	detector  platform.Detector
	stdout    io.Writer
	stderr    io.Writer
	newBinary binaryFactory
}

func (a *app) rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "swp-install [install|uninstall]...",
		Short: "Install or remove the swp executable for this platform",
		Long: `swp-install downloads the prebuilt sweep release archive that matches the
host operating system and CPU, verifies it, and extracts the swp executable.

The arguments select the actions: "install", "uninstall", or both. Uninstall
always runs before install. Unknown arguments are ignored.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.manifest, "manifest", "package.json", "package manifest to read the release version from")
	f.StringVar(&opts.version, "version", "", "release version to install (overrides the manifest)")
	f.StringVar(&opts.installDir, "install-dir", "", "directory that receives the executable (default: bin/ next to the manifest)")
	f.StringVar(&opts.cacheDir, "cache-dir", "", "download cache directory")
	f.StringVar(&opts.releasesHost, "releases-host", "", "base URL of versioned release directories")
	f.StringVar(&opts.keyring, "keyring", "", "GPG public keyring used to verify release signatures")
	f.BoolVar(&opts.tolerant, "tolerant", false, "ignore unsupported platforms during uninstall")
	f.BoolVar(&opts.force, "force", false, "reinstall even if the executable is present")
	f.BoolVar(&opts.requireVerification, "require-verification", false, "refuse archives without a valid signature or checksum")
	f.BoolVarP(&opts.debug, "debug", "d", false, "show debug logs")
	f.BoolVar(&opts.info, "info", false, "print the detected platform and release asset, then exit")
	f.BoolVar(&opts.envHelp, "env-help", false, "list the supported environment variables, then exit")

	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, opts options, args []string) error {
	log := logging.New(a.stderr, opts.debug)

	if opts.envHelp {
		fmt.Fprintln(a.stdout, installer.Usage())
		return nil
	}

	settings, err := installer.LoadSettings(opts.manifest)
	if err != nil {
		return err
	}
	applyFlags(cmd, settings, opts)

	version, versionErr := release.ResolveVersion(settings.Version, opts.manifest, Version)

	mode := installer.ModeStrict
	if opts.tolerant {
		mode = installer.ModeTolerant
	}

	shim, err := installer.New(installer.Config{
		Host:       settings.ReleasesHost,
		Version:    version,
		VersionErr: versionErr,
		Mode:       mode,
		Detector:   a.detector,
		NewBinary: func(asset *release.Asset) (installer.Binary, error) {
			return a.newBinary(settings, opts.force, asset, &log)
		},
		Logger: &log,
	})
	if err != nil {
		return err
	}

	if opts.info {
		return a.printInfo(ctx, shim, settings, version)
	}

	log.Debug().
		Str("version", version).
		Str("install_dir", settings.InstallDir).
		Str("host", settings.ReleasesHost).
		Msg("installer settings")

	return shim.Run(ctx, args)
}

// applyFlags overrides environment settings with flags the user set.
func applyFlags(cmd *cobra.Command, s *installer.Settings, opts options) {
	f := cmd.Flags()
	if f.Changed("install-dir") {
		s.InstallDir = opts.installDir
	}
	if f.Changed("cache-dir") {
		s.CacheDir = opts.cacheDir
	}
	if f.Changed("releases-host") {
		s.ReleasesHost = opts.releasesHost
	}
	if f.Changed("version") {
		s.Version = opts.version
	}
	if f.Changed("keyring") {
		s.KeyringPath = opts.keyring
	}
	if f.Changed("require-verification") {
		s.RequireVerification = opts.requireVerification
	}
}

func newManager(s *installer.Settings, force bool, asset *release.Asset, log *zerolog.Logger) (installer.Binary, error) {
	return binary.NewManager(binary.Config{
		InstallDir:          s.InstallDir,
		CacheDir:            s.CacheDir,
		Asset:               asset,
		KeyringPath:         s.KeyringPath,
		RequireVerification: s.RequireVerification,
		Force:               force,
		Logger:              log,
	})
}
