// Package project identifies software projects and the dependency
// directories inside them that can be safely removed.
package project

import "github.com/woubuc/sweep/internal/config"

// Language is a project kind. A directory holding any of the Markers files
// is a project, and its Dirs are cleanable.
type Language struct {
	Name    string
	Markers []string
	Dirs    []string
}

// Built-in languages.
var (
	Rust = Language{Name: "Rust", Markers: []string{"Cargo.toml"}, Dirs: []string{"target"}}
	Node = Language{Name: "Node.js", Markers: []string{"package.json"}, Dirs: []string{"node_modules", ".cache"}}
	Java = Language{Name: "Java", Markers: []string{"pom.xml"}, Dirs: []string{".gradle", "build"}}
)

// BuiltinLanguages returns the languages sweep knows without configuration.
func BuiltinLanguages() []Language {
	return []Language{Rust, Node, Java}
}

// WithCustom appends extra languages to the built-ins.
func WithCustom(custom ...Language) []Language {
	return append(BuiltinLanguages(), custom...)
}

// FromConfig converts languages declared in the Lua config.
func FromConfig(langs []config.Language) []Language {
	out := make([]Language, 0, len(langs))
	for _, l := range langs {
		out = append(out, Language{Name: l.Name, Markers: l.Detect, Dirs: l.Dirs})
	}
	return out
}
