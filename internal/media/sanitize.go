package media

import (
	"strings"
	"unicode"
)

// Sanitize converts a display string into a filesystem-safe base name.
// Whitespace runs become a single hyphen, characters that are unsafe on
// common filesystems are removed, and consecutive hyphens collapse into
// one. Total and idempotent: any input yields a valid (possibly empty)
// result, and sanitizing twice changes nothing. Callers are expected to
// fall back to another field when the result is empty.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastHyphen := false
	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		case unicode.IsControl(r) || strings.ContainsRune(`<>:"/\|?*`, r):
			// dropped
		case r == '-':
			if !lastHyphen {
				b.WriteRune(r)
				lastHyphen = true
			}
		default:
			b.WriteRune(r)
			lastHyphen = false
		}
	}

	return strings.Trim(b.String(), "-")
}
