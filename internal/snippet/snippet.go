// Package snippet turns HTML or plain text blobs into bounded preview strings.
package snippet

import (
	"regexp"
	"strings"
)

// Kind selects the extraction strategy for a raw blob.
type Kind int

const (
	// KindMarkup collects block-level fragments from an HTML document.
	KindMarkup Kind = iota
	// KindFlattened takes the full rendered text of an HTML document.
	KindFlattened
	// KindHighlighted is plain text carrying search highlight markers.
	KindHighlighted
)

func (k Kind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindFlattened:
		return "flattened"
	case KindHighlighted:
		return "highlighted"
	default:
		return "unknown"
	}
}

const (
	Separator    = " · "
	Ellipsis     = "..."
	MaxFragments = 7

	HighlightStart = "@@@hl@@@"
	HighlightEnd   = "@@@endhl@@@"
)

// Default maximum lengths for the two source profiles.
const (
	DefaultGraphLength    = 200
	DefaultDocumentLength = 300
)

// Profile binds an extraction kind to a maximum length for one source.
type Profile struct {
	Kind      Kind
	MaxLength int
}

// Extract applies the profile to raw.
func (p Profile) Extract(raw string) string {
	return Extract(raw, p.Kind, p.MaxLength)
}

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	whitespaceRuns = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// Extract converts raw into a preview of at most maxLength characters plus an
// ellipsis. Empty input yields an empty string.
func Extract(raw string, kind Kind, maxLength int) string {
	if raw == "" {
		return ""
	}

	var text string
	switch kind {
	case KindHighlighted:
		text = collapse(StripHighlights(raw))
	case KindFlattened:
		root, err := ParseHTML(raw)
		if err != nil {
			return ""
		}
		text = collapse(normalizeSpaces(RenderedText(root)))
	default:
		root, err := ParseHTML(raw)
		if err != nil {
			return ""
		}
		text = strings.Join(Fragments(root, MaxFragments), Separator)
	}

	return Truncate(normalizeSpaces(text), maxLength)
}

// StripHighlights removes paired highlight markers.
func StripHighlights(s string) string {
	if !strings.Contains(s, "@@@") {
		return s
	}
	s = strings.ReplaceAll(s, HighlightStart, "")
	return strings.ReplaceAll(s, HighlightEnd, "")
}

// Truncate returns s unchanged when it is shorter than maxLength runes,
// otherwise its first maxLength runes followed by Ellipsis. A non-positive
// maxLength disables truncation.
func Truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) < maxLength {
		return s
	}
	return string(runes[:maxLength]) + Ellipsis
}

func collapse(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	s = newlineRuns.ReplaceAllString(s, "\n")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	parts := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, Separator)
}

func normalizeSpaces(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}
