package config

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/woubuc/sweep/internal/platform"
)

// mockDetector is a test implementation of platform.Detector.
type mockDetector struct {
	info *platform.Info
	err  error
}

func (m *mockDetector) Detect(ctx context.Context) (*platform.Info, error) {
	return m.info, m.err
}

func TestParser_ParseString_Empty(t *testing.T) {
	config, err := NewParser(nil).ParseString(context.Background(), `-- nothing here`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if !reflect.DeepEqual(config, Default()) {
		t.Errorf("config = %+v, want defaults", config)
	}
	if config.MaxAge() != 30*24*time.Hour {
		t.Errorf("MaxAge() = %v, want 30 days", config.MaxAge())
	}
}

func TestParser_ParseString_Full(t *testing.T) {
	luaCode := `
		sweep = {
			paths = { "~/code", "/srv/projects" },
			ignore = "archive|vendor",
			all = true,
			max_age_days = 14,
			git_safe = true,
			languages = {
				{ name = "Go", detect = { "go.mod" }, dirs = { "vendor" } },
				{ name = "Python", detect = "pyproject.toml", dirs = { ".venv", "__pycache__" } },
			},
		}
	`

	config, err := NewParser(nil).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := &Config{
		Paths:      []string{"~/code", "/srv/projects"},
		Ignore:     "archive|vendor",
		All:        true,
		MaxAgeDays: 14,
		GitSafe:    true,
		Languages: []Language{
			{Name: "Go", Detect: []string{"go.mod"}, Dirs: []string{"vendor"}},
			{Name: "Python", Detect: []string{"pyproject.toml"}, Dirs: []string{".venv", "__pycache__"}},
		},
	}
	if !reflect.DeepEqual(config, want) {
		t.Errorf("config mismatch:\ngot:  %+v\nwant: %+v", config, want)
	}
}

func TestParser_ParseString_PlatformConditionals(t *testing.T) {
	luaCode := `
		sweep = {
			paths = {
				platform.is_windows and "C:/code" or nil,
				platform.is_linux and "~/code" or nil,
			},
			languages = {
				platform.is_linux and { name = "Zig", detect = { "build.zig" }, dirs = { "zig-cache" } } or nil,
			},
		}
	`

	detector := &mockDetector{info: &platform.Info{
		OS:       "linux",
		Arch:     "amd64",
		OSType:   platform.OSTypeLinux,
		ArchName: platform.ArchX64,
	}}

	config, err := NewParser(detector).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if !reflect.DeepEqual(config.Paths, []string{"~/code"}) {
		t.Errorf("Paths = %v, want [~/code]", config.Paths)
	}
	if len(config.Languages) != 1 || config.Languages[0].Name != "Zig" {
		t.Errorf("Languages = %+v, want Zig only", config.Languages)
	}
}

func TestParser_ParseString_DetectorError(t *testing.T) {
	detector := &mockDetector{err: errors.New("no platform")}

	_, err := NewParser(detector).ParseString(context.Background(), `sweep = {}`)
	if err == nil || !strings.Contains(err.Error(), "platform detection failed") {
		t.Errorf("error = %v, want platform detection failure", err)
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		detail  string
	}{
		{
			name:    "syntax error",
			code:    `sweep = {`,
			message: "Lua error",
		},
		{
			name:    "sweep is not a table",
			code:    `sweep = "yes"`,
			message: "invalid 'sweep' table",
		},
		{
			name:    "paths wrong type",
			code:    `sweep = { paths = 42 }`,
			message: "config validation failed",
			detail:  "paths",
		},
		{
			name:    "path entry wrong type",
			code:    `sweep = { paths = { "~/a", true } }`,
			message: "config validation failed",
			detail:  "paths[2]",
		},
		{
			name:    "invalid ignore regex",
			code:    `sweep = { ignore = "(unclosed" }`,
			message: "config validation failed",
			detail:  "ignore",
		},
		{
			name:    "all wrong type",
			code:    `sweep = { all = "yes" }`,
			message: "config validation failed",
			detail:  "all",
		},
		{
			name:    "negative max age",
			code:    `sweep = { max_age_days = -1 }`,
			message: "config validation failed",
			detail:  "max_age_days",
		},
		{
			name:    "fractional max age",
			code:    `sweep = { max_age_days = 1.5 }`,
			message: "config validation failed",
			detail:  "whole number",
		},
		{
			name:    "language without dirs",
			code:    `sweep = { languages = { { name = "Go", detect = { "go.mod" } } } }`,
			message: "config validation failed",
			detail:  "languages[1].dirs",
		},
		{
			name:    "language escaping project",
			code:    `sweep = { languages = { { name = "X", detect = { "x" }, dirs = { "../.." } } } }`,
			message: "config validation failed",
			detail:  "path traversal",
		},
		{
			name:    "language cleaning project root",
			code:    `sweep = { languages = { { name = "X", detect = { "x" }, dirs = { "." } } } }`,
			message: "config validation failed",
			detail:  "project root",
		},
		{
			name:    "runtime error",
			code:    `sweep = { paths = { nothing.here } }`,
			message: "Lua error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected error but got none")
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if parseErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", parseErr.Message, tt.message)
			}
			if tt.detail != "" && !strings.Contains(parseErr.Detail, tt.detail) {
				t.Errorf("Detail = %q, want substring %q", parseErr.Detail, tt.detail)
			}
		})
	}
}

func TestParser_ParseString_TooLarge(t *testing.T) {
	code := "-- " + strings.Repeat("x", MaxConfigSize)

	_, err := NewParser(nil).ParseString(context.Background(), code)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Message != "config too large" {
		t.Errorf("error = %v, want config too large", err)
	}
}

func TestParser_ParseString_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestFormatError(t *testing.T) {
	err := &ParseError{
		Message: "Lua error",
		Detail:  "<string>:1: unexpected symbol\nstack traceback:\n\t[G]: ?",
	}

	short := FormatError(err, false)
	if short != "Lua error: <string>:1: unexpected symbol" {
		t.Errorf("FormatError(false) = %q", short)
	}

	verbose := FormatError(err, true)
	if !strings.Contains(verbose, "stack traceback") {
		t.Errorf("FormatError(true) should keep details, got %q", verbose)
	}

	plain := errors.New("plain")
	if FormatError(plain, false) != "plain" {
		t.Error("non-ParseError should be returned as is")
	}
}
