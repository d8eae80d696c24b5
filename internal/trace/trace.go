// Package trace generates trace ids and maps them to and from object keys.
package trace

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// UploadPrefix is the key prefix for uploaded source documents
const UploadPrefix = "uploads"

// DefaultFilename replaces filenames that sanitize to nothing
const DefaultFilename = "document.txt"

var uploadKeyPattern = regexp.MustCompile(`uploads/\d{4}/\d{2}/\d{2}/([a-f0-9-]{36})/`)

// NewID returns a fresh random trace id
func NewID() string {
	return uuid.NewString()
}

// ExtractFromKey finds the trace id embedded in an upload key. The pattern may
// appear anywhere in the key.
func ExtractFromKey(key string) (string, bool) {
	m := uploadKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// BuildUploadKey returns uploads/<yyyy>/<mm>/<dd>/<traceID>/<filename> using
// the UTC date of now.
func BuildUploadKey(now time.Time, traceID, filename string) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s/%s",
		UploadPrefix, now.Year(), int(now.Month()), now.Day(), traceID, SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name, replaces spaces with underscores and
// drops everything except letters, digits, '.', '_' and '-'.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(strings.ReplaceAll(name, `\`, "/"))
	name = path.Base(name)
	if name == "." || name == "/" {
		name = ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	out := b.String()
	if strings.Trim(out, ".") == "" {
		return DefaultFilename
	}
	return out
}
