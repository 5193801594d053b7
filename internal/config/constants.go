package config

// Lua schema field names and globals
const (
	luaGlobalSweep    = "sweep"
	luaFieldPaths     = "paths"
	luaFieldIgnore    = "ignore"
	luaFieldAll       = "all"
	luaFieldMaxAge    = "max_age_days"
	luaFieldGitSafe   = "git_safe"
	luaFieldLanguages = "languages"
	luaFieldName      = "name"
	luaFieldDetect    = "detect"
	luaFieldDirs      = "dirs"
)

const (
	// DefaultMaxAgeDays is how long a project must be untouched before its
	// dependency directories are cleaned.
	DefaultMaxAgeDays = 30
	// MaxConfigSize bounds the size of a config file read from disk.
	MaxConfigSize = 1 << 20
	// MaxLanguageCount bounds the number of custom languages.
	MaxLanguageCount = 100
)
