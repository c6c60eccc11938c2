package jsonmend

import (
	"fmt"

	"charm.land/jsonmend/internal/jsonext"
)

// ContextWindow is the size in bytes of the text excerpt reported around a
// parse failure.
const ContextWindow = 20

// ParsePosition locates a parse failure.
type ParsePosition struct {
	// Offset is the 0-based byte offset of the offending character.
	Offset int `json:"offset"`
	// Line and Column are 1-based; Column counts runes.
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Context string `json:"context"`
}

func (p ParsePosition) String() string {
	return fmt.Sprintf("line %d, column %d (offset %d) near %q", p.Line, p.Column, p.Offset, p.Context)
}

// Verify parses text as JSON. On failure the returned error is a
// *SyntaxError describing where parsing stopped.
func Verify(text string) (any, error) {
	value, err := jsonext.Decode(text)
	if err == nil {
		return value, nil
	}
	offset := jsonext.ErrorOffset(err, len(text))
	line, column := jsonext.Locate(text, offset)
	return nil, &SyntaxError{
		Position: ParsePosition{
			Offset:  offset,
			Line:    line,
			Column:  column,
			Context: jsonext.Window(text, offset, ContextWindow),
		},
		Msg: err.Error(),
		err: err,
	}
}
