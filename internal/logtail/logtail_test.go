package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "backend.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"partial", 3, all[7:]},
		{"wraps ring", 4, all[6:]},
		{"exact", 10, all},
		{"more than exists", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Read(%d) = %v, want %v", tt.maxLines, got, tt.want)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Read = %v, want no lines", got)
	}
}

func TestRead_EmptyPath(t *testing.T) {
	got, err := Read("  ", 5)
	if err != nil || got != nil {
		t.Fatalf("Read(empty) = %v, %v; want nil, nil", got, err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Level
	}{
		{`time=2025-01-02T10:00:00Z level=ERROR msg="scrape failed"`, LevelError},
		{`Traceback (most recent call last):`, LevelError},
		{`time=2025-01-02T10:00:00Z level=WARN msg=slow`, LevelWarn},
		{`WARNING: This is a development server.`, LevelWarn},
		{`DEBUG selenium: session created`, LevelDebug},
		{`127.0.0.1 - - "GET /status/abc HTTP/1.1" 200 -`, LevelInfo},
	}
	for _, tt := range tests {
		if got := Classify(tt.line); got != tt.want {
			t.Fatalf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
