package jsonmend

import (
	"cmp"
	"slices"
)

// TraceBoundExceeded is appended to a trace when the targeted stage stops at
// its pass cap with a trigger still matching.
const TraceBoundExceeded = "pipeline-bound-exceeded"

// Trace is the ordered list of rule IDs that fired for one input.
type Trace []string

// ApplyRules runs the targeted repair stage. On every pass the first rule in
// priority order whose trigger matches is applied, then all triggers are
// evaluated again. Passes are capped at twice the number of rules; when the
// cap is reached with a trigger still matching, the text so far is returned
// together with ErrPipelineBoundExceeded.
//
// A rule that panics stops the stage: the text as it stood before that rule
// is returned with a *RuleError.
func ApplyRules(text string, rules []Rule) (result string, trace Trace, err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			result, err = text, &RuleError{ID: current, Panic: r}
		}
	}()

	ordered := slices.SortedStableFunc(slices.Values(rules), func(a, b Rule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	limit := max(2*len(ordered), 1)
	for range limit {
		rule, ok := firstTriggered(text, ordered, &current)
		if !ok {
			return text, trace, nil
		}
		text = rule.Apply(text)
		trace = append(trace, rule.ID)
	}
	if _, ok := firstTriggered(text, ordered, &current); ok {
		return text, append(trace, TraceBoundExceeded), ErrPipelineBoundExceeded
	}
	return text, trace, nil
}

// firstTriggered stores the ID of the rule under evaluation in current.
func firstTriggered(text string, rules []Rule, current *string) (Rule, bool) {
	for _, r := range rules {
		*current = r.ID
		if r.Trigger(text) {
			return r, true
		}
	}
	return Rule{}, false
}
