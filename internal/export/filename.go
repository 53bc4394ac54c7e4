package export

import (
	"strings"
	"time"
)

// sanitizeFilename keeps ASCII letters and digits, lower-cased, and turns
// every other character into an underscore.
func sanitizeFilename(title string) string {
	var sb strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// exportFilename is "{sanitized title}_{YYYY-MM-DD}.{ext}", dated in UTC.
func exportFilename(title string, format Format, now time.Time) string {
	return sanitizeFilename(title) + "_" + now.UTC().Format("2006-01-02") + "." + format.Extension()
}
