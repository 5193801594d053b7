// Package installer implements the package-manager hook that installs or
// removes the prebuilt swp executable for the host platform.
package installer

const (
	// TokenInstall selects installation when present among the arguments.
	TokenInstall = "install"
	// TokenUninstall selects removal when present among the arguments.
	TokenUninstall = "uninstall"
)

// Actions is the set of operations selected by an argument list.
type Actions struct {
	Uninstall bool
	Install   bool
}

// None reports whether no action was selected.
func (a Actions) None() bool {
	return !a.Install && !a.Uninstall
}

// Dispatch selects actions by exact token match anywhere in args. When both
// tokens appear, callers run uninstall before install.
func Dispatch(args []string) Actions {
	var a Actions
	for _, arg := range args {
		switch arg {
		case TokenInstall:
			a.Install = true
		case TokenUninstall:
			a.Uninstall = true
		}
	}
	return a
}
