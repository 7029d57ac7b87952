package util

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonLabelChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ValidLabel reports whether s only uses label characters.
var ValidLabel = regexp.MustCompile(`^[A-Za-z0-9_-]+$`).MatchString

// Labelize derives a label from a display name. Names without any ASCII
// letter or digit get a random label.
func Labelize(name string) string {
	label := nonLabelChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if strings.Trim(label, "_-") == "" {
		return strings.ReplaceAll(uuid.NewString(), "-", "_")
	}
	return label
}

// Dedup returns the values that appear more than once, in first-repeat order.
func Dedup[T comparable](values []T) []T {
	seen := make(map[T]bool, len(values))
	var dups []T
	for _, v := range values {
		if repeated, ok := seen[v]; ok {
			if !repeated {
				dups = append(dups, v)
				seen[v] = true
			}
			continue
		}
		seen[v] = false
	}
	return dups
}
