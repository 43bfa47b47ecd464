package executor

import (
	"fmt"
	"strings"

	"github.com/viant/boque/model/task"
	"github.com/viant/boque/model/types"
	"github.com/viant/parsly"
)

// Template represents a command with {{name}} placeholders
type Template struct {
	segments []segment
}

type segment struct {
	literal     string
	placeholder string
}

// ParseTemplate parses a command template. Only a well-formed {{name}} is a
// placeholder; any other "{{" (e.g. a go-template such as {{.Id}}) is literal.
func ParseTemplate(text string) (*Template, error) {
	cursor := parsly.NewCursor("", []byte(text), 0)
	ret := &Template{}
	literal := strings.Builder{}
	flush := func() {
		if literal.Len() > 0 {
			ret.segments = append(ret.segments, segment{literal: literal.String()})
			literal.Reset()
		}
	}
	for cursor.Pos < cursor.InputSize {
		start := cursor.Pos
		if name, ok := matchPlaceholder(cursor); ok {
			flush()
			ret.segments = append(ret.segments, segment{placeholder: name})
			continue
		}
		cursor.Pos = start
		literal.WriteByte(cursor.Input[cursor.Pos])
		cursor.Pos++
	}
	flush()
	return ret, nil
}

// matchPlaceholder matches {{ name }} at the cursor position
func matchPlaceholder(cursor *parsly.Cursor) (string, bool) {
	matched := cursor.MatchOne(openPlaceholderToken)
	if matched.Code != openPlaceholderCode {
		return "", false
	}
	matched = cursor.MatchAfterOptional(whitespaceToken, identifierToken)
	if matched.Code != identifierCode {
		return "", false
	}
	name := matched.Text(cursor)
	matched = cursor.MatchAfterOptional(whitespaceToken, closePlaceholderToken)
	if matched.Code != closePlaceholderCode {
		return "", false
	}
	return name, true
}

// Placeholders returns placeholder names in order of appearance
func (t *Template) Placeholders() []string {
	var result []string
	for _, seg := range t.segments {
		if seg.placeholder != "" {
			result = append(result, seg.placeholder)
		}
	}
	return result
}

// Expand substitutes binding values; every placeholder must be bound
func (t *Template) Expand(binding *task.Binding) (string, error) {
	builder := strings.Builder{}
	for _, seg := range t.segments {
		if seg.placeholder == "" {
			builder.WriteString(seg.literal)
			continue
		}
		value, ok := binding.Lookup(seg.placeholder)
		if !ok {
			return "", fmt.Errorf("%w: no binding for {{%v}}", types.ErrTemplate, seg.placeholder)
		}
		builder.WriteString(value)
	}
	return builder.String(), nil
}
