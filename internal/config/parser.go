package config

import (
	"context"
	"fmt"
	"math"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/woubuc/sweep/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "sweep" table. A config that never
// assigns it yields the defaults.
func extractConfig(L *lua.LState) (*Config, error) {
	config := Default()

	value := L.GetGlobal(luaGlobalSweep)
	if value.Type() == lua.LTNil {
		return config, nil
	}
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'sweep' table",
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	var err error
	if config.Paths, err = stringList(table.RawGetString(luaFieldPaths), luaFieldPaths); err != nil {
		return nil, err
	}

	switch v := table.RawGetString(luaFieldIgnore).(type) {
	case lua.LString:
		config.Ignore = string(v)
	case *lua.LNilType:
	default:
		return nil, typeError(luaFieldIgnore, "string", v)
	}

	if config.All, err = optionalBool(table.RawGetString(luaFieldAll), luaFieldAll); err != nil {
		return nil, err
	}
	if config.GitSafe, err = optionalBool(table.RawGetString(luaFieldGitSafe), luaFieldGitSafe); err != nil {
		return nil, err
	}

	switch v := table.RawGetString(luaFieldMaxAge).(type) {
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) {
			return nil, &ParseError{
				Message: "config validation failed",
				Detail:  fmt.Sprintf("%s must be a whole number of days (got %v)", luaFieldMaxAge, f),
			}
		}
		config.MaxAgeDays = int(f)
	case *lua.LNilType:
	default:
		return nil, typeError(luaFieldMaxAge, "number", v)
	}

	if languages := table.RawGetString(luaFieldLanguages); languages.Type() != lua.LTNil {
		langTable, ok := languages.(*lua.LTable)
		if !ok {
			return nil, typeError(luaFieldLanguages, "table", languages)
		}
		if config.Languages, err = extractLanguages(langTable); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return config, nil
}

// extractLanguages reads the languages array. Entries that evaluate to nil
// (platform conditionals) are skipped.
func extractLanguages(table *lua.LTable) ([]Language, error) {
	var languages []Language

	for i := 1; i <= table.MaxN(); i++ {
		value := table.RawGetInt(i)
		if value.Type() == lua.LTNil {
			continue
		}

		field := fmt.Sprintf("%s[%d]", luaFieldLanguages, i)
		entry, ok := value.(*lua.LTable)
		if !ok {
			return nil, typeError(field, "table", value)
		}

		lang := Language{}
		if name, ok := entry.RawGetString(luaFieldName).(lua.LString); ok {
			lang.Name = string(name)
		}

		var err error
		if lang.Detect, err = stringList(entry.RawGetString(luaFieldDetect), field+"."+luaFieldDetect); err != nil {
			return nil, err
		}
		if lang.Dirs, err = stringList(entry.RawGetString(luaFieldDirs), field+"."+luaFieldDirs); err != nil {
			return nil, err
		}

		languages = append(languages, lang)
	}

	return languages, nil
}

// stringList reads a string or an array of strings. nil entries from
// platform conditionals are skipped.
func stringList(value lua.LValue, field string) ([]string, error) {
	switch v := value.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return []string{string(v)}, nil
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			item := v.RawGetInt(i)
			switch s := item.(type) {
			case *lua.LNilType:
			case lua.LString:
				out = append(out, string(s))
			default:
				return nil, typeError(fmt.Sprintf("%s[%d]", field, i), "string", item)
			}
		}
		return out, nil
	default:
		return nil, typeError(field, "string list", value)
	}
}

func optionalBool(value lua.LValue, field string) (bool, error) {
	switch v := value.(type) {
	case lua.LBool:
		return bool(v), nil
	case *lua.LNilType:
		return false, nil
	default:
		return false, typeError(field, "boolean", value)
	}
}

func typeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: "config validation failed",
		Detail:  fmt.Sprintf("%s: expected %s, got %s", field, want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
