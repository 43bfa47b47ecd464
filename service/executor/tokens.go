package executor

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	identifierCode
	openPlaceholderCode
	closePlaceholderCode
)

// Token definitions
var (
	whitespaceToken       = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	identifierToken       = parsly.NewToken(identifierCode, "Identifier", &identifierMatcher{})
	openPlaceholderToken  = parsly.NewToken(openPlaceholderCode, "{{", matcher.NewFragment("{{"))
	closePlaceholderToken = parsly.NewToken(closePlaceholderCode, "}}", matcher.NewFragment("}}"))
)

// identifierMatcher matches placeholder names: letters, digits, '_', '-' and '.'
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '_' || c == '-' || c == '.' {
			matched++
			continue
		}
		break
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
