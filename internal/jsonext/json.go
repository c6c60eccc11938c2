// Package jsonext holds the low-level decode and offset helpers shared by the
// repair stages.
package jsonext

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

// Decode unmarshals data into a generic value.
func Decode[T string | []byte](data T) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ErrorOffset returns the byte offset of the character the decoder stopped
// at. For unexpected end of input that is the last byte of data.
func ErrorOffset(err error, size int) int {
	offset := size
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		// The decoder counts the offending byte as consumed.
		offset = int(syntaxErr.Offset) - 1
	}
	return min(max(offset, 0), max(size-1, 0))
}

// Locate converts a byte offset into a 1-based line and rune column.
func Locate(text string, offset int) (line, column int) {
	offset = min(max(offset, 0), len(text))
	head := text[:offset]
	line = strings.Count(head, "\n") + 1
	if nl := strings.LastIndexByte(head, '\n'); nl >= 0 {
		head = head[nl+1:]
	}
	return line, utf8.RuneCountInString(head) + 1
}

// Window returns roughly size bytes of text centered on offset, clipped to the
// text bounds and widened so no rune is split.
func Window(text string, offset, size int) string {
	half := size / 2
	start := max(offset-half, 0)
	end := min(offset+half, len(text))
	if start > end {
		return ""
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}
