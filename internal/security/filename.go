package security

import "strings"

// maxFilenameLen bounds names built from user-supplied body ids.
const maxFilenameLen = 128

// SafeFilename joins parts with "-" and replaces anything other than ASCII
// letters, digits, dot, underscore or dash with a single underscore. Leading
// and trailing dots and underscores are trimmed, so the result can never name
// a parent directory. An empty result becomes "unknown".
func SafeFilename(parts ...string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.Join(parts, "-") {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
