package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a \n\t b   c "))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "hello...", TruncateText("hello wonderful world", 12))
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com/blog ", "https://example.com/blog"},
		{"http://example.com", "http://example.com"},
		{"httpbin.org", "https://httpbin.org"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTarget(tt.in), tt.in)
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"https://Example.com:8443/path?q=1", "example.com"},
		{"http://blog.example.com/", "blog.example.com"},
	}
	for _, tt := range tests {
		got, err := Hostname(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := Hostname("   ")
	assert.Error(t, err)
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://example.com"))
	assert.False(t, IsValidURL("example.com"))
	assert.False(t, IsValidURL("ftp://example.com"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "2024-01-01T10_00_00.json", SanitizeFilename("2024-01-01T10:00:00.json"))
	assert.Equal(t, "a_b", SanitizeFilename("a/b\x00"))
}
