package gate

import (
	"bytes"
	"strconv"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	numberCode
	commaCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	numberToken     = parsly.NewToken(numberCode, "Number", &numberMatcher{})
	commaToken      = parsly.NewToken(commaCode, ",", matcher.NewByte(','))
)

// numberMatcher matches unsigned decimal numbers
type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	dot := false
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		c := input[i]
		if c >= '0' && c <= '9' {
			matched++
			continue
		}
		if c == '.' && !dot && matched > 0 {
			dot = true
			matched++
			continue
		}
		break
	}
	return matched
}

// GPUQuery produces one "index, utilization.gpu, memory.used, memory.total" line per device
const GPUQuery = "nvidia-smi --query-gpu=index,utilization.gpu,memory.used,memory.total --format=csv,noheader,nounits"

const busy = 100.0

// ParseGPUReport parses GPUQuery output. A line whose index cannot be read is
// skipped; a line with any unreadable metric yields a busy unit.
func ParseGPUReport(data []byte) []*Unit {
	var result []*Unit
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if unit := parseGPULine(line); unit != nil {
			result = append(result, unit)
		}
	}
	return result
}

func parseGPULine(line []byte) *Unit {
	cursor := parsly.NewCursor("", line, 0)
	matched := cursor.MatchAfterOptional(whitespaceToken, numberToken)
	if matched.Code != numberCode {
		return nil
	}
	index := matched.Text(cursor)
	if _, err := strconv.Atoi(index); err != nil {
		return nil
	}
	unit := &Unit{Kind: KindGPU, ID: index, Compute: busy, Memory: busy,
		Env: map[string]string{"CUDA_VISIBLE_DEVICES": index}}

	var values []float64
	for i := 0; i < 3; i++ {
		if matched = cursor.MatchAfterOptional(whitespaceToken, commaToken); matched.Code != commaCode {
			return unit
		}
		matched = cursor.MatchAfterOptional(whitespaceToken, numberToken)
		if matched.Code != numberCode {
			return unit
		}
		value, err := strconv.ParseFloat(matched.Text(cursor), 64)
		if err != nil {
			return unit
		}
		values = append(values, value)
	}
	cursor.MatchOne(whitespaceToken)
	if cursor.Pos < cursor.InputSize {
		return unit //trailing fields
	}
	used, total := values[1], values[2]
	if total <= 0 {
		return unit
	}
	unit.Compute = values[0]
	unit.Memory = used / total * 100
	return unit
}
