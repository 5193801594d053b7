package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/woubuc/sweep/internal/platform"
	"github.com/woubuc/sweep/internal/release"
)

// Mode selects how platform resolution failures are treated.
type Mode int

const (
	// ModeStrict resolves before looking at the arguments, so an unsupported
	// platform fails every invocation.
	ModeStrict Mode = iota
	// ModeTolerant resolves per action. Failures are ignored during
	// uninstall and fatal during install.
	ModeTolerant
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeTolerant:
		return "tolerant"
	default:
		return "unknown"
	}
}

// Binary is the collaborator that places or removes the executable.
type Binary interface {
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

// Factory creates the collaborator for a resolved release asset.
type Factory func(asset *release.Asset) (Binary, error)

// Config configures a Shim.
type Config struct {
	// Host is the releases host; empty means release.DefaultHost.
	Host string
	// Version is the release version to fetch.
	Version string
	// VersionErr is why no version could be determined. It is reported as
	// a resolution failure, so tolerant uninstalls still succeed.
	VersionErr error
	// Tool is the executable name; empty means release.DefaultTool.
	Tool string
	Mode Mode
	// Detector reports the host platform.
	Detector platform.Detector
	// NewBinary builds the collaborator once the asset is known.
	NewBinary Factory
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Shim maps the host platform to a release asset and runs the actions an
// argument list selects against the binary collaborator.
type Shim struct {
	host       string
	version    string
	versionErr error
	tool       string
	mode       Mode
	detector   platform.Detector
	newBinary  Factory
	log        zerolog.Logger
}

// New creates a Shim.
func New(config Config) (*Shim, error) {
	if config.Detector == nil {
		return nil, errors.New("Detector is required")
	}
	if config.NewBinary == nil {
		return nil, errors.New("NewBinary is required")
	}

	log := zerolog.Nop()
	if config.Logger != nil {
		log = *config.Logger
	}

	return &Shim{
		host:       config.Host,
		version:    config.Version,
		versionErr: config.VersionErr,
		tool:       config.Tool,
		mode:       config.Mode,
		detector:   config.Detector,
		newBinary:  config.NewBinary,
		log:        log.With().Str("component", "installer").Logger(),
	}, nil
}

// Resolve detects the platform and builds the release asset for it.
func (s *Shim) Resolve(ctx context.Context) (*release.Asset, error) {
	info, err := s.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	label, err := info.Label()
	if err != nil {
		return nil, err
	}
	if s.versionErr != nil {
		return nil, s.versionErr
	}

	return release.NewAsset(s.host, s.version, s.tool, label)
}

// Run executes the actions selected by args. Uninstall runs before install.
func (s *Shim) Run(ctx context.Context, args []string) error {
	actions := Dispatch(args)
	s.log.Debug().
		Stringer("mode", s.mode).
		Bool("install", actions.Install).
		Bool("uninstall", actions.Uninstall).
		Msg("dispatch")

	if s.mode == ModeStrict {
		return s.runStrict(ctx, actions)
	}
	return s.runTolerant(ctx, actions)
}

func (s *Shim) runStrict(ctx context.Context, actions Actions) error {
	bin, err := s.binary(ctx)
	if err != nil {
		return err
	}

	if actions.Uninstall {
		if err := bin.Uninstall(ctx); err != nil {
			return fmt.Errorf("uninstall: %w", err)
		}
	}

	if actions.Install {
		if err := bin.Install(ctx); err != nil {
			return fmt.Errorf("install: %w", err)
		}
	}

	return nil
}

func (s *Shim) runTolerant(ctx context.Context, actions Actions) error {
	if actions.None() {
		return nil
	}

	bin, resolveErr := s.binary(ctx)

	if actions.Uninstall {
		if resolveErr != nil {
			s.log.Warn().Err(resolveErr).Msg("skipping uninstall, release could not be resolved")
		} else if err := bin.Uninstall(ctx); err != nil {
			return fmt.Errorf("uninstall: %w", err)
		}
	}

	if actions.Install {
		if resolveErr != nil {
			return &InstallResolutionError{Err: resolveErr}
		}
		if err := bin.Install(ctx); err != nil {
			return fmt.Errorf("install: %w", err)
		}
	}

	return nil
}

// binary resolves the asset and creates the collaborator for it.
func (s *Shim) binary(ctx context.Context) (Binary, error) {
	asset, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("url", asset.URL).Str("platform", asset.Label).Msg("resolved release")

	bin, err := s.newBinary(asset)
	if err != nil {
		return nil, fmt.Errorf("create installer for %s: %w", asset.URL, err)
	}
	return bin, nil
}
