// Package slug builds URL-safe session identifiers from session names.
package slug

import (
	"strings"

	"github.com/google/uuid"
)

const SuffixLength = 6

// Base lower-cases the name, collapses every run of characters outside
// [a-z0-9] into one hyphen and trims hyphens from both ends.
func Base(name string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}

// Suffix returns SuffixLength random lower-case hex characters.
func Suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:SuffixLength]
}

// Make joins the base of name with the given suffix.
func Make(name, suffix string) string {
	base := Base(name)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
