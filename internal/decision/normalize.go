package decision

import (
	"strings"
	"time"

	dErrors "hsaonboard/pkg/domain-errors"
)

// FieldKind selects the normalization rules applied to a raw value.
type FieldKind int

const (
	KindName FieldKind = iota
	KindDate
	KindAddress
	KindIDNumber
)

// ErrInvalidDateFormat is returned when a date value matches none of the
// accepted formats. Callers treat it as a non-match, never as a fatal error.
var ErrInvalidDateFormat = dErrors.New(dErrors.CodeInvalidInput, "invalid date format")

// dateFormats are the accepted date layouts, tried in order.
var dateFormats = []string{"2006-01-02", "01/02/2006"}

// addressAbbreviations expands common street abbreviations so that
// "123 Main St." and "123 main street" compare equal. A fixed table, not a
// general normalizer.
var addressAbbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"rd":   "road",
	"blvd": "boulevard",
	"dr":   "drive",
	"ln":   "lane",
	"apt":  "apartment",
	"ste":  "suite",
	"n":    "north",
	"s":    "south",
	"e":    "east",
	"w":    "west",
}

// Normalize canonicalizes a raw value for comparison. Pure function; the only
// error is ErrInvalidDateFormat for unparseable dates.
func Normalize(value string, kind FieldKind) (string, error) {
	switch kind {
	case KindName:
		return normalizeName(value), nil
	case KindDate:
		return normalizeDate(value)
	case KindAddress:
		return normalizeAddress(value), nil
	case KindIDNumber:
		return normalizeIDNumber(value), nil
	}
	return normalizeName(value), nil
}

func normalizeName(value string) string {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(value)
	return strings.ToLower(collapseWhitespace(strings.TrimSpace(cleaned)))
}

func normalizeDate(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", ErrInvalidDateFormat
}

func normalizeAddress(value string) string {
	lowered := strings.ToLower(collapseWhitespace(strings.TrimSpace(value)))
	words := strings.Split(lowered, " ")
	for i, word := range words {
		trimmed := strings.TrimRight(word, ".,")
		if expanded, ok := addressAbbreviations[trimmed]; ok {
			words[i] = expanded
		} else {
			words[i] = trimmed
		}
	}
	return strings.Join(words, " ")
}

func normalizeIDNumber(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseDate parses a date value with the same accepted formats as Normalize.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateFormat
}
