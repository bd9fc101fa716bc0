package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare handle", "wesko.music", "wesko.music"},
		{"at-prefixed handle", "@wesko.music", "wesko.music"},
		{"tiktok profile url", "https://www.tiktok.com/@wesko.music", "wesko.music"},
		{"tiktok url with query", "https://www.tiktok.com/@some_user?lang=en", "some_user"},
		{"instagram profile url", "https://www.instagram.com/weskogram/", "weskogram"},
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
		{"url without handle", "https://www.tiktok.com/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProfileHandle(tt.input))
		})
	}
}

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	assert.Len(t, id, 14)
}

func TestReadLinesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	content := "@alpha\n\n# a comment\nbeta\n  \nhttps://www.tiktok.com/@gamma\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := ReadLinesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"@alpha", "beta", "https://www.tiktok.com/@gamma"}, lines)
}

func TestReadLinesFromFileMissing(t *testing.T) {
	_, err := ReadLinesFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
