package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDark(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != ThemeDark {
		t.Fatalf("Theme = %q, want %q", p.Theme, ThemeDark)
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "prodwatch")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(prefsDir, "prefs.toml"), []byte("theme = \"Light\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != ThemeLight {
		t.Fatalf("Theme = %q, want %q", p.Theme, ThemeLight)
	}
}

func TestSave_RoundTripsTheme(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(prefsFile, Prefs{Theme: "light"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := Load(prefsFile)
	if loaded.Theme != ThemeLight {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, ThemeLight)
	}
}

func TestLoad_BadContentFallsBackToDark(t *testing.T) {
	tests := map[string]string{
		"empty":   "theme = \"\"\n",
		"unknown": "theme = \"Dracula\"\n",
		"invalid": "not valid toml {{{\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
			if err := os.WriteFile(prefsFile, []byte(body), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			p := Load(prefsFile)
			if p.Theme != ThemeDark {
				t.Fatalf("Theme = %q, want %q", p.Theme, ThemeDark)
			}
		})
	}
}

func TestToggleTheme(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{ThemeDark, ThemeLight},
		{ThemeLight, ThemeDark},
		{"", ThemeLight},
		{"LIGHT", ThemeDark},
	}
	for _, tt := range tests {
		if got := ToggleTheme(tt.in); got != tt.want {
			t.Fatalf("ToggleTheme(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
