package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error, since the backend may not have written
// anything yet.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 || strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	total := 0
	for scanner.Scan() {
		ring[total%maxLines] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if total <= maxLines {
		return append([]string(nil), ring[:total]...), nil
	}
	start := total % maxLines
	return append(append([]string(nil), ring[start:]...), ring[:start]...), nil
}

// Level is the severity guessed from a captured log line.
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
	LevelWarn
	LevelError
)

// Classify guesses the severity of a line. It understands slog text output
// (level=WARN) as well as the plain "ERROR"/"WARNING" prefixes Python's
// logging module and Werkzeug emit, and falls back to LevelInfo.
func Classify(line string) Level {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "LEVEL=ERROR"), strings.Contains(upper, "ERROR"), strings.Contains(upper, "TRACEBACK"):
		return LevelError
	case strings.Contains(upper, "LEVEL=WARN"), strings.Contains(upper, "WARNING"):
		return LevelWarn
	case strings.Contains(upper, "LEVEL=DEBUG"), strings.HasPrefix(upper, "DEBUG"):
		return LevelDebug
	default:
		return LevelInfo
	}
}
