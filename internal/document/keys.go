package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxSlugLen caps generated filename slugs. Longer titles are cut at
// the last hyphen before the limit so words stay intact.
const maxSlugLen = 60

// keyPattern matches a full CR key: project code, hyphen, decimal number.
var keyPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)-(\d+)$`)

// KeyError reports a CR reference that does not have key shape.
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid CR key %q: %s", e.Key, e.Reason)
}

// Slugify converts a CR title into a filename slug: lowercase ASCII
// letters and digits with single hyphens between words.
func Slugify(title string) string {
	if strings.TrimSpace(title) == "" {
		return "untitled"
	}

	s := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-' || r == '.' || r == '/':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "untitled"
	}
	if len(slug) <= maxSlugLen {
		return slug
	}
	cut := slug[:maxSlugLen]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return cut
}

// ParseKey splits a CR key like "MDT-066" (or "mdt-66") into its
// project code and number. The code is folded to uppercase; the number
// must parse as an unsigned decimal of any width.
func ParseKey(key string) (code string, number int, err error) {
	m := keyPattern.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return "", 0, &KeyError{Key: key, Reason: "expected format PROJECT-NUMBER (e.g. MDT-066)"}
	}
	n, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return "", 0, &KeyError{Key: key, Reason: "number out of range"}
	}
	return strings.ToUpper(m[1]), int(n), nil
}

// FormatKey builds the canonical CR key: uppercase code plus the
// number zero-padded to three digits. Wider numbers keep their width.
func FormatKey(code string, number int) string {
	return fmt.Sprintf("%s-%03d", strings.ToUpper(code), number)
}

// Filename builds the canonical CR filename for a key and title.
func Filename(code string, number int, title string) string {
	return fmt.Sprintf("%s-%s.md", FormatKey(code, number), Slugify(title))
}
