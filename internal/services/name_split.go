package services

import (
	"strings"
	"unicode"
)

// SplitName breaks a full name on the first whitespace run into last and
// first components. Both ASCII and ideographic (U+3000) spaces count. A name
// with no separator keeps everything in the last component.
func SplitName(full string) (string, string) {
	trimmed := strings.TrimSpace(full)
	separator := strings.IndexFunc(trimmed, unicode.IsSpace)
	if separator < 0 {
		return trimmed, ""
	}
	last := trimmed[:separator]
	first := strings.TrimLeftFunc(trimmed[separator:], unicode.IsSpace)
	return last, first
}
