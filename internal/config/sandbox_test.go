package config

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSandboxLuaVM(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		errMsg string // empty means the code must run
	}{
		{name: "string library", code: `x = string.format("%s/%s", "~", "code")`},
		{name: "table library", code: `t = {"target"}; table.insert(t, "build")`},
		{name: "math library", code: `x = math.floor(30.5)`},
		{name: "basic functions", code: `x = type("a") .. tostring(1) .. tonumber("2")`},
		{name: "iteration", code: `for _, v in ipairs({1, 2}) do end`},

		{name: "os blocked", code: `os.execute("rm -rf /")`, errMsg: "attempt to index"},
		{name: "os.getenv blocked", code: `x = os.getenv("HOME")`, errMsg: "attempt to index"},
		{name: "io blocked", code: `io.open("/etc/passwd")`, errMsg: "attempt to index"},
		{name: "debug blocked", code: `debug.getinfo(1)`, errMsg: "attempt to index"},
		{name: "require blocked", code: `require("socket")`, errMsg: "attempt to call"},
		{name: "dofile blocked", code: `dofile("/tmp/x.lua")`, errMsg: "attempt to call"},
		{name: "loadfile blocked", code: `loadfile("/tmp/x.lua")`, errMsg: "attempt to call"},
		{name: "load blocked", code: `load("return 1")`, errMsg: "attempt to call"},
		{name: "loadstring blocked", code: `loadstring("return 1")`, errMsg: "attempt to call"},
		{name: "collectgarbage blocked", code: `collectgarbage()`, errMsg: "attempt to call"},
		{name: "setfenv blocked", code: `setfenv(1, {})`, errMsg: "attempt to call"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newSandboxedVM()
			defer L.Close()

			err := L.DoString(tt.code)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("code %q failed: %v", tt.code, err)
				}
				return
			}

			if err == nil {
				t.Fatalf("code %q should fail in the sandbox", tt.code)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestNewSandboxedVM(t *testing.T) {
	L := newSandboxedVM()
	defer L.Close()

	for _, name := range []string{"os", "io", "require", "debug"} {
		if v := L.GetGlobal(name); v.Type() != lua.LTNil {
			t.Errorf("global %s = %v, want nil", name, v.Type())
		}
	}

	for _, name := range []string{"string", "table", "math"} {
		if v := L.GetGlobal(name); v.Type() != lua.LTTable {
			t.Errorf("global %s = %v, want table", name, v.Type())
		}
	}
}

func TestNewSandboxedVM_DeepRecursion(t *testing.T) {
	L := newSandboxedVM()
	defer L.Close()

	err := L.DoString(`local function f(n) return 1 + f(n + 1) end f(1)`)
	if err == nil {
		t.Fatal("unbounded recursion should fail")
	}
}
