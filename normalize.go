package jsonmend

import "strings"

type normalizeStep struct {
	id string
	fn func(string) string
}

// The steps run in this order; each assumes the previous ones already ran.
var normalizeSteps = []normalizeStep{
	{id: "normalize:control-chars", fn: stripControlChars},
	{id: "normalize:backslash-escapes", fn: repairBackslashes},
	{id: "normalize:trailing-commas", fn: removeTrailingCommas},
	{id: "normalize:bare-keys", fn: quoteBareKeys},
}

// Normalize applies the generic, corruption-agnostic cleanups: control
// character stripping, backslash escape repair, trailing comma removal and
// bare key quoting. Valid JSON is returned unchanged, and
// Normalize(Normalize(t)) == Normalize(t).
func Normalize(text string) string {
	out, _ := normalize(text)
	return out
}

// normalize also reports the IDs of the steps that changed the text.
func normalize(text string) (string, Trace) {
	var trace Trace
	for _, step := range normalizeSteps {
		next := step.fn(text)
		if next != text {
			trace = append(trace, step.id)
		}
		text = next
	}
	return text, trace
}

// stringState tracks whether a scan is inside a string literal.
type stringState struct {
	in      bool
	escaped bool
}

// step advances the state past c.
func (s *stringState) step(c byte) {
	switch {
	case s.escaped:
		s.escaped = false
	case s.in && c == '\\':
		s.escaped = true
	case c == '"':
		s.in = !s.in
	}
}

func isControl(c byte) bool {
	return c < 0x20 || c == 0x7f
}

// stripControlChars drops control bytes. JSON whitespace outside string
// literals is kept.
func stripControlChars(text string) string {
	if strings.IndexFunc(text, func(r rune) bool { return r < 0x20 || r == 0x7f }) < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	var st stringState
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isControl(c) {
			if !st.in && isSpace(c) {
				b.WriteByte(c)
			}
			continue
		}
		b.WriteByte(c)
		st.step(c)
	}
	return b.String()
}

func isEscapeChar(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// repairBackslashes doubles every backslash that does not start a valid
// escape sequence.
func repairBackslashes(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(text) && isEscapeChar(text[i+1]) {
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// removeTrailingCommas drops commas, or runs of commas, that directly precede
// a closing brace or bracket.
func removeTrailingCommas(text string) string {
	if !strings.Contains(text, ",") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	var st stringState
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !st.in && c == ',' && closesAfter(text, i+1) {
			continue
		}
		b.WriteByte(c)
		st.step(c)
	}
	return b.String()
}

// closesAfter reports whether a closer follows i, skipping whitespace and
// further commas.
func closesAfter(text string, i int) bool {
	for i < len(text) && (isSpace(text[i]) || text[i] == ',') {
		i++
	}
	return i < len(text) && (text[i] == '}' || text[i] == ']')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}

// quoteBareKeys wraps unquoted property names in quotes. A name qualifies
// when it follows '{' or ',' and is followed by ':'.
func quoteBareKeys(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	var st stringState
	var last byte
	changed := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if st.in || c == '"' {
			b.WriteByte(c)
			st.step(c)
			if !st.in {
				last = '"'
			}
			continue
		}
		if isSpace(c) {
			b.WriteByte(c)
			continue
		}
		if isIdentStart(c) && (last == '{' || last == ',') {
			end := i + 1
			for end < len(text) && isIdentChar(text[end]) {
				end++
			}
			colon := skipSpace(text, end)
			if colon < len(text) && text[colon] == ':' {
				b.WriteByte('"')
				b.WriteString(text[i:end])
				b.WriteByte('"')
				changed = true
			} else {
				b.WriteString(text[i:end])
			}
			last = text[end-1]
			i = end - 1
			continue
		}
		b.WriteByte(c)
		last = c
	}
	if !changed {
		return text
	}
	return b.String()
}
