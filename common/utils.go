// Package common provides shared helpers used across the pipeline.
package common

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

var (
	tiktokHandlePattern    = regexp.MustCompile(`@([\w.-]+)`)
	instagramHandlePattern = regexp.MustCompile(`instagram\.com/([^/?]+)`)
)

// GenerateRunID generates a unique identifier based on the current timestamp.
// The identifier is formatted as a string in the "YYYYMMDDHHMMSS" format.
func GenerateRunID() string {
	return time.Now().Format("20060102150405")
}

// ProfileHandle extracts a canonical account handle from a profile URL or a
// raw "@handle" string. Returns an empty string when no handle can be found.
func ProfileHandle(urlOrHandle string) string {
	s := strings.TrimSpace(urlOrHandle)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http") {
		return strings.TrimPrefix(s, "@")
	}
	if m := tiktokHandlePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := instagramHandlePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// ReadLinesFromFile reads non-empty lines from a file, one entry per line.
// It ignores empty lines and lines starting with a '#' character (comments).
func ReadLinesFromFile(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
