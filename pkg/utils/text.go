package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRegex    = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*]`)
	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
)

// CleanText removes extra whitespace and normalizes text
func CleanText(text string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

// TruncateText truncates text to a maximum length, preserving word boundaries
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	lastSpace := strings.LastIndex(truncated, " ")

	if lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// NormalizeTarget trims user input and prepends https:// when no scheme is given
func NormalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || schemePattern.MatchString(target) {
		return target
	}
	return "https://" + target
}

// Hostname extracts the lowercase host of a target URL, without port.
// Targets without a scheme are treated as https.
func Hostname(target string) (string, error) {
	normalized := NormalizeTarget(target)
	if normalized == "" {
		return "", fmt.Errorf("empty target URL")
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("invalid target URL %q: %w", target, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("invalid target URL %q: missing host", target)
	}
	return host, nil
}

// IsValidURL checks if a string is an absolute http(s) URL
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SanitizeFilename removes invalid characters from a filename
func SanitizeFilename(filename string) string {
	filename = invalidChars.ReplaceAllString(filename, "_")

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)

	if len(cleaned) > 255 {
		cleaned = cleaned[:255]
	}

	return cleaned
}
