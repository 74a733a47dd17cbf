package search

import (
	"slices"
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it on every rune that is neither a
// letter nor a number; the underscore is a separator too. The result is a
// sorted set without empty tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	if len(fields) == 0 {
		return nil
	}

	slices.Sort(fields)
	return slices.Compact(fields)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
