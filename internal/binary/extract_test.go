package binary

import (
	"archive/tar"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExtractBinary(t *testing.T) {
	tests := []struct {
		name       string
		entries    []tarEntry
		binaryName string
		want       string
		wantErr    bool
	}{
		{
			name:       "top_level_binary",
			entries:    []tarEntry{{name: "swp", content: "#!/bin/sh\necho swp\n"}},
			binaryName: "swp",
			want:       "#!/bin/sh\necho swp\n",
		},
		{
			name: "nested_binary",
			entries: []tarEntry{
				{name: "sweep-linux/", typeflag: tar.TypeDir},
				{name: "sweep-linux/README.md", content: "readme"},
				{name: "sweep-linux/swp", content: "binary"},
			},
			binaryName: "swp",
			want:       "binary",
		},
		{
			name:       "windows_executable",
			entries:    []tarEntry{{name: "swp.exe", content: "MZ"}},
			binaryName: "swp.exe",
			want:       "MZ",
		},
		{
			name:       "binary_missing",
			entries:    []tarEntry{{name: "other", content: "x"}},
			binaryName: "swp",
			wantErr:    true,
		},
		{
			name: "directory_with_binary_name_ignored",
			entries: []tarEntry{
				{name: "swp/", typeflag: tar.TypeDir},
				{name: "swp/swp", content: "inner"},
			},
			binaryName: "swp",
			want:       "inner",
		},
		{
			name:       "path_traversal_rejected",
			entries:    []tarEntry{{name: "../../swp", content: "evil"}},
			binaryName: "swp",
			wantErr:    true,
		},
		{
			name:       "absolute_path_rejected",
			entries:    []tarEntry{{name: "/usr/bin/swp", content: "evil"}},
			binaryName: "swp",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archivePath := writeFile(t, dir, "sweep.tar.gz", buildTarGz(t, tt.entries...))
			destPath := filepath.Join(dir, "bin", tt.binaryName)

			err := NewExtractor().ExtractBinary(archivePath, destPath, tt.binaryName)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
					t.Error("nothing should be written on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractBinary failed: %v", err)
			}

			content, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("failed to read extracted binary: %v", err)
			}
			if string(content) != tt.want {
				t.Errorf("content = %q, want %q", content, tt.want)
			}

			if runtime.GOOS != "windows" {
				info, err := os.Stat(destPath)
				if err != nil {
					t.Fatalf("stat failed: %v", err)
				}
				if info.Mode().Perm()&0111 == 0 {
					t.Errorf("extracted binary is not executable: %v", info.Mode())
				}
			}
		})
	}
}

func TestExtractBinary_CorruptedArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeFile(t, dir, "corrupt.tar.gz", []byte("not a gzip stream"))

	if err := NewExtractor().ExtractBinary(archivePath, filepath.Join(dir, "swp"), "swp"); err == nil {
		t.Error("expected error for corrupted archive")
	}
}

func TestExtractBinary_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	destPath := writeFile(t, dir, "bin/swp", []byte("old"))
	archivePath := writeFile(t, dir, "sweep.tar.gz", buildTarGz(t, tarEntry{name: "swp", content: "new"}))

	if err := NewExtractor().ExtractBinary(archivePath, destPath, "swp"); err != nil {
		t.Fatalf("ExtractBinary failed: %v", err)
	}

	content, _ := os.ReadFile(destPath)
	if string(content) != "new" {
		t.Errorf("content = %q, want %q", content, "new")
	}
	if _, err := os.Stat(destPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}
}

func TestSafeEntryName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"swp", true},
		{"sweep-linux/swp", true},
		{"./swp", true},
		{"a/../swp", false},
		{"../swp", false},
		{`..\swp`, false},
		{"/etc/passwd", false},
		{`\windows\swp.exe`, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := safeEntryName(tt.name); got != tt.want {
			t.Errorf("safeEntryName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSetExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no executable bit on windows")
	}

	path := writeFile(t, t.TempDir(), "swp", []byte("x"))
	if err := SetExecutable(path); err != nil {
		t.Fatalf("SetExecutable failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	if err := SetExecutable(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
