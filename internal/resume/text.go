package resume

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode"
)

// ValidationError reports which field of an item payload was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// unicode dash variants folded to a plain hyphen before printing.
var dashVariants = map[rune]bool{
	'‐': true, // hyphen
	'‑': true, // non-breaking hyphen
	'‒': true, // figure dash
	'–': true, // en dash
	'—': true, // em dash
	'―': true, // horizontal bar
	'−': true, // minus sign
}

// SanitizeText strips invisible and control characters that would corrupt
// printed output (soft hyphens, zero-width characters, BOMs, format/control/
// surrogate/private-use/unassigned categories) and folds dash variants to "-".
func SanitizeText(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	for _, r := range value {
		switch r {
		case '\u00AD', // soft hyphen
			'\u200B', // zero width space
			'\u200C', // zero width non-joiner
			'\u200D', // zero width joiner
			'\u2060', // word joiner
			'\uFEFF', // byte order mark
			'\uFFFD', // replacement character
			'\uFFFE', '\uFFFF':
			continue
		}
		if dashVariants[r] {
			b.WriteRune('-')
			continue
		}
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.In(r, unicode.Cf, unicode.Cc, unicode.Cs, unicode.Co) {
			continue
		}
		if !unicode.IsGraphic(r) && !unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// NormalizeText sanitizes and trims surrounding whitespace.
func NormalizeText(value string) string {
	return strings.TrimSpace(SanitizeText(value))
}

// requiredText normalizes a required field and rejects empty or over-long values.
func requiredText(field, value string, maxLen int) (string, error) {
	normalized := NormalizeText(value)
	if normalized == "" {
		return "", fieldErr(field, "is required")
	}
	if len([]rune(normalized)) > maxLen {
		return "", fieldErr(field, "must be %d characters or fewer", maxLen)
	}
	return normalized, nil
}

// optionalText normalizes an optional field, rejecting only over-long values.
func optionalText(field, value string, maxLen int) (string, error) {
	normalized := NormalizeText(value)
	if normalized == "" {
		return "", nil
	}
	if len([]rune(normalized)) > maxLen {
		return "", fieldErr(field, "must be %d characters or fewer", maxLen)
	}
	return normalized, nil
}

// NormalizeProjectTitle validates a project title.
func NormalizeProjectTitle(value string) (string, error) {
	return requiredText("title", value, MaxProjectTitle)
}

// NormalizeLabel validates an optional short display label.
func NormalizeLabel(value string) (string, error) {
	return optionalText("label", value, MaxBookmarkLabel)
}

// NormalizeEmail trims, validates against the standard address grammar and
// lower-cases the result.
func NormalizeEmail(field, value string) (string, error) {
	normalized := NormalizeText(value)
	if normalized == "" {
		return "", nil
	}
	if len(normalized) > MaxEmail {
		return "", fieldErr(field, "must be %d characters or fewer", MaxEmail)
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", fieldErr(field, "is not a valid email address")
	}
	return strings.ToLower(normalized), nil
}

// NormalizeURL trims the value, prepends https:// when no scheme is present,
// collapses repeated scheme prefixes to one, and lower-cases the hostname.
// The result must parse with a host; invalid input is rejected.
func NormalizeURL(field, value string, maxLen int) (string, error) {
	normalized := NormalizeText(value)
	if normalized == "" {
		return "", nil
	}

	// Strip every leading scheme prefix, then put a single one back. Users
	// paste values like "https://https://example.com" often enough.
	scheme := ""
	for {
		lower := strings.ToLower(normalized)
		if strings.HasPrefix(lower, "https://") {
			if scheme == "" {
				scheme = "https"
			}
			normalized = normalized[len("https://"):]
			continue
		}
		if strings.HasPrefix(lower, "http://") {
			if scheme == "" {
				scheme = "http"
			}
			normalized = normalized[len("http://"):]
			continue
		}
		break
	}
	if scheme == "" {
		scheme = "https"
	}
	normalized = scheme + "://" + normalized

	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" || strings.ContainsAny(parsed.Host, " ") {
		return "", fieldErr(field, "is not a valid URL")
	}
	parsed.Host = strings.ToLower(parsed.Host)
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	out := parsed.String()
	if len(out) > maxLen {
		return "", fieldErr(field, "must be %d characters or fewer", maxLen)
	}
	return out, nil
}

// NormalizeYear validates a year within [YearMin, current year].
func NormalizeYear(field string, year int) (int, error) {
	if year < YearMin || year > YearMax() {
		return 0, fieldErr(field, "must be between %d and %d", YearMin, YearMax())
	}
	return year, nil
}

// NormalizeMonth validates a calendar month.
func NormalizeMonth(field string, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fieldErr(field, "must be between 1 and 12")
	}
	return month, nil
}

// splitList turns either a list of strings or a single separator-joined
// string into normalized, length-capped entries with empties dropped.
func splitList(field string, value any, sep string, maxLen int) ([]string, error) {
	var raw []string
	switch v := value.(type) {
	case nil:
		// An absent list marshals as [], never null.
		return []string{}, nil
	case []string:
		raw = v
	case []any:
		for _, entry := range v {
			raw = append(raw, fmt.Sprint(entry))
		}
	case string:
		raw = strings.Split(v, sep)
	default:
		return nil, fieldErr(field, "must be a string or a list of strings")
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		normalized := NormalizeText(entry)
		if normalized == "" {
			continue
		}
		if len([]rune(normalized)) > maxLen {
			return nil, fieldErr(field, "entries must be %d characters or fewer", maxLen)
		}
		out = append(out, normalized)
	}
	return out, nil
}

// NormalizeBullets accepts a list or a newline-joined string of bullet lines.
func NormalizeBullets(field string, value any) ([]string, error) {
	return splitList(field, value, "\n", MaxBulletLine)
}

// NormalizeTags accepts a list or a comma-joined string of tags.
func NormalizeTags(field string, value any) ([]string, error) {
	return splitList(field, value, ",", MaxTagLine)
}
