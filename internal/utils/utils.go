package utils

import (
	"strings"
	"time"

	"github.com/goombaio/namegenerator"
)

// GenerateSessionTitle creates a random, memorable session title using namegenerator
func GenerateSessionTitle() string {
	seed := time.Now().UTC().UnixNano()
	nameGenerator := namegenerator.NewNameGenerator(seed)

	// Generate a name like "wispy-dust"
	name := nameGenerator.Generate()

	// Some names might have underscores; convert to hyphens for consistency
	name = strings.ReplaceAll(name, "_", "-")

	return name
}

// SanitizeTitle cleans up arbitrary text, typically a file name, for use as
// a session title
func SanitizeTitle(raw string) string {
	// Replace spaces with hyphens and convert to lowercase
	name := strings.ToLower(strings.ReplaceAll(raw, " ", "-"))

	// Replace other separator characters with hyphens
	// (except for already existing hyphens)
	replacer := strings.NewReplacer(
		"_", "-",
		".", "-",
		",", "-",
		";", "-",
		":", "-",
		"/", "-",
		"\\", "-",
	)
	name = replacer.Replace(name)

	// Replace multiple consecutive hyphens with a single hyphen
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	// Remove leading and trailing hyphens
	name = strings.Trim(name, "-")

	return name
}

// TruncateString shortens s to at most max runes, appending an ellipsis when
// anything was cut
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
