// Package config reads the optional Lua configuration of the swp cleaner.
//
// A config file declares a global "sweep" table:
//
//	sweep = {
//	    paths = { "~/code" },
//	    ignore = "archive|vendor",
//	    all = false,
//	    max_age_days = 30,
//	    git_safe = false,
//	    languages = {
//	        { name = "Go", detect = { "go.mod" }, dirs = { "vendor" } },
//	    },
//	}
//
// Every field is optional. Files run in a sandboxed gopher-lua VM with the
// os, io and module-loading functions removed, and a read-only "platform"
// table injected so configs can branch on the host:
//
//	paths = { platform.is_windows and "C:/code" or "~/code" }
package config
