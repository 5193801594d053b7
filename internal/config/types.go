package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config is the cleaner configuration.
type Config struct {
	// Paths are searched when none are given on the command line (supports ~)
	Paths []string
	// Ignore is a regular expression matched against full directory paths
	Ignore string
	// All disregards project age
	All bool
	// MaxAgeDays is the minimum age of a project to be cleaned
	MaxAgeDays int
	// GitSafe only removes directories that git would ignore
	GitSafe bool
	// Languages are additional project kinds
	Languages []Language
}

// Language declares a project kind: any Detect file marks a project, and
// its Dirs are cleaned.
type Language struct {
	Name   string
	Detect []string
	Dirs   []string
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{MaxAgeDays: DefaultMaxAgeDays}
}

// MaxAge returns MaxAgeDays as a duration.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

// IgnorePattern compiles Ignore, returning nil when it is empty.
func (c *Config) IgnorePattern() (*regexp.Regexp, error) {
	if c.Ignore == "" {
		return nil, nil
	}
	return regexp.Compile(c.Ignore)
}

// Validate performs basic validation on a Config. Indices in error fields
// are 1-based to match the Lua source.
func (c *Config) Validate() error {
	for i, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Field: fmt.Sprintf("paths[%d]", i+1), Message: "path cannot be empty"}
		}
	}

	if _, err := c.IgnorePattern(); err != nil {
		return &ValidationError{Field: "ignore", Message: fmt.Sprintf("invalid regular expression: %v", err)}
	}

	if c.MaxAgeDays < 0 {
		return &ValidationError{Field: "max_age_days", Message: fmt.Sprintf("must not be negative (got %d)", c.MaxAgeDays)}
	}

	if len(c.Languages) > MaxLanguageCount {
		return &ValidationError{
			Field:   "languages",
			Message: fmt.Sprintf("too many languages (%d), maximum is %d", len(c.Languages), MaxLanguageCount),
		}
	}

	for i, lang := range c.Languages {
		field := fmt.Sprintf("languages[%d]", i+1)
		if lang.Name == "" {
			return &ValidationError{Field: field + ".name", Message: "name cannot be empty"}
		}
		if len(lang.Detect) == 0 {
			return &ValidationError{Field: field + ".detect", Message: "at least one detect file is required"}
		}
		if len(lang.Dirs) == 0 {
			return &ValidationError{Field: field + ".dirs", Message: "at least one directory is required"}
		}
		for j, name := range lang.Detect {
			if err := validateEntryName(name); err != nil {
				return &ValidationError{Field: fmt.Sprintf("%s.detect[%d]", field, j+1), Message: err.Error()}
			}
		}
		for j, dir := range lang.Dirs {
			if err := validateEntryName(dir); err != nil {
				return &ValidationError{Field: fmt.Sprintf("%s.dirs[%d]", field, j+1), Message: err.Error()}
			}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// validateEntryName accepts a relative path that stays inside the project.
func validateEntryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("absolute paths not allowed: %s", name)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed: %s", name)
		}
	}
	if filepath.Clean(name) == "." {
		return fmt.Errorf("project root cannot be cleaned: %s", name)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
