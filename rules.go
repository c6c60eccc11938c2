// Package jsonmend repairs JSON payloads corrupted by an upstream text
// generator. It applies a fixed set of targeted rules for known corruption
// shapes, a generic normalization pass, and a single verification parse.
package jsonmend

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultProtectedFields are the fields known to be emitted with a stray
// quotation mark after their numeric value.
var DefaultProtectedFields = []string{"option", "analysis_option"}

// Rule is a single repair rule: a trigger predicate paired with a fix.
//
// Apply must be total, and applying it again once Trigger no longer matches
// must not change the text.
type Rule struct {
	ID       string
	Priority int
	Trigger  func(text string) bool
	Apply    func(text string) string
}

// RuleConfig parameterizes the pattern library.
type RuleConfig struct {
	// ProtectedFields get the stray-quote and unclosed-quote rules.
	ProtectedFields []string
	// StringFields are typed as strings by the surrounding schema and also
	// get the unquoted-numeral rule.
	StringFields []string
}

type shape struct {
	name       string
	rank       int
	stringOnly bool // only for schema string fields
	match      matchFunc
}

// matchFunc inspects the member value starting at v. It returns the span to
// replace and the numeral to quote in its place.
type matchFunc func(text string, v int) (end int, numeral string, ok bool)

var shapes = []shape{
	{name: "stray-quote", rank: 1, match: matchStrayQuote},
	{name: "unclosed-quote", rank: 2, match: matchUnclosedQuote},
	{name: "unquoted-numeral", rank: 3, stringOnly: true, match: matchUnquotedNumeral},
}

// Rules returns the pattern library for cfg, ordered by priority: the most
// specific shapes first.
func Rules(cfg RuleConfig) []Rule {
	var rules []Rule
	for _, s := range shapes {
		fields := cfg.ProtectedFields
		if s.stringOnly {
			fields = cfg.StringFields
		}
		for i, field := range dedupe(fields) {
			rules = append(rules, newFieldRule(s, field, s.rank*100+i))
		}
	}
	slices.SortStableFunc(rules, func(a, b Rule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return rules
}

// DefaultRules returns the pattern library for DefaultProtectedFields.
func DefaultRules() []Rule {
	return Rules(RuleConfig{ProtectedFields: DefaultProtectedFields})
}

func newFieldRule(s shape, field string, priority int) Rule {
	key := `"` + field + `"`
	return Rule{
		ID:       s.name + ":" + field,
		Priority: priority,
		Trigger: func(text string) bool {
			return len(findEdits(text, key, s.match)) > 0
		},
		Apply: func(text string) string {
			return applyEdits(text, findEdits(text, key, s.match))
		},
	}
}

type edit struct {
	start, end int
	numeral    string
}

// findEdits locates every member named key whose value matches m.
func findEdits(text, key string, m matchFunc) []edit {
	var edits []edit
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], key)
		if idx < 0 {
			break
		}
		at := from + idx
		from = at + len(key)
		if !isMemberKey(text, at) {
			continue
		}
		colon := skipSpace(text, at+len(key))
		if colon >= len(text) || text[colon] != ':' {
			continue
		}
		v := skipSpace(text, colon+1)
		if end, numeral, ok := m(text, v); ok {
			edits = append(edits, edit{start: v, end: end, numeral: numeral})
			from = end
		}
	}
	return edits
}

func applyEdits(text string, edits []edit) string {
	if len(edits) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 2*len(edits))
	last := 0
	for _, e := range edits {
		b.WriteString(text[last:e.start])
		b.WriteByte('"')
		b.WriteString(e.numeral)
		b.WriteByte('"')
		last = e.end
	}
	b.WriteString(text[last:])
	return b.String()
}

// matchStrayQuote matches `1"` followed by a member separator.
func matchStrayQuote(text string, v int) (int, string, bool) {
	n := scanNumeral(text, v)
	if n == v || n >= len(text) || text[n] != '"' {
		return 0, "", false
	}
	next := skipSpace(text, n+1)
	if next >= len(text) || !isMemberEnd(text[next]) {
		return 0, "", false
	}
	return n + 1, text[v:n], true
}

// matchUnclosedQuote matches `"1` running straight into a structural
// delimiter that ends the member. After a comma the next token must be an
// object key, and a closer must not be followed by a quote; otherwise the
// delimiter sits inside a valid string such as "1, 2" or "1}".
func matchUnclosedQuote(text string, v int) (int, string, bool) {
	if v >= len(text) || text[v] != '"' {
		return 0, "", false
	}
	n := scanNumeral(text, v+1)
	if n == v+1 {
		return 0, "", false
	}
	d := skipSpace(text, n)
	if d >= len(text) || !isMemberEnd(text[d]) {
		return 0, "", false
	}
	if text[d] == ',' {
		next := skipSpace(text, d+1)
		if !canFollowSeparator(text, next) {
			return 0, "", false
		}
	} else if d+1 < len(text) && text[d+1] == '"' {
		return 0, "", false
	}
	return n, text[v+1 : n], true
}

// canFollowSeparator reports whether the token at i can follow a member
// separator: an object key, a closer not followed by a quote, or the end of
// the text.
func canFollowSeparator(text string, i int) bool {
	switch {
	case i >= len(text):
		return true
	case text[i] == '}' || text[i] == ']':
		return i+1 >= len(text) || text[i+1] != '"'
	case text[i] == '"':
		return isKeyAt(text, i)
	}
	return false
}

// isKeyAt reports whether the quote at i opens a string that is followed by
// a colon.
func isKeyAt(text string, i int) bool {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			colon := skipSpace(text, j+1)
			return colon < len(text) && text[colon] == ':'
		}
	}
	return false
}

// matchUnquotedNumeral matches a bare numeral ending the member.
func matchUnquotedNumeral(text string, v int) (int, string, bool) {
	n := scanNumeral(text, v)
	if n == v {
		return 0, "", false
	}
	d := skipSpace(text, n)
	if d >= len(text) || (text[d] != ',' && text[d] != '}') {
		return 0, "", false
	}
	return n, text[v:n], true
}

// scanNumeral returns the end of a -?digits(.digits)?([eE][+-]?digits)?
// numeral at i, or i when there is none.
func scanNumeral(text string, i int) int {
	j := i
	if j < len(text) && text[j] == '-' {
		j++
	}
	digits := j
	for j < len(text) && isDigit(text[j]) {
		j++
	}
	if j == digits {
		return i
	}
	if j+1 < len(text) && text[j] == '.' && isDigit(text[j+1]) {
		j++
		for j < len(text) && isDigit(text[j]) {
			j++
		}
	}
	if j < len(text) && (text[j] == 'e' || text[j] == 'E') {
		k := j + 1
		if k < len(text) && (text[k] == '+' || text[k] == '-') {
			k++
		}
		if k < len(text) && isDigit(text[k]) {
			for k < len(text) && isDigit(text[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

// isMemberKey reports whether the quote at i opens an object key: it is not
// escaped and follows '{' or ','.
func isMemberKey(text string, i int) bool {
	if isEscaped(text, i) {
		return false
	}
	j := i - 1
	for j >= 0 && isSpace(text[j]) {
		j--
	}
	return j >= 0 && (text[j] == '{' || text[j] == ',')
}

// isEscaped reports whether the byte at i is preceded by an odd number of
// backslashes.
func isEscaped(text string, i int) bool {
	count := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		count++
	}
	return count%2 == 1
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isMemberEnd(c byte) bool {
	return c == ',' || c == '}' || c == ']'
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
