package jsonmend

import (
	"errors"
	"slices"
)

// Option configures the repair engine.
type Option func(*options)

type options struct {
	protectedFields []string
	stringFields    []string
	rules           []Rule
}

func applyOptions(opts []Option) options {
	cfg := options{protectedFields: DefaultProtectedFields}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithProtectedFields replaces DefaultProtectedFields with fields.
func WithProtectedFields(fields ...string) Option {
	return func(o *options) {
		o.protectedFields = slices.Clone(fields)
	}
}

// WithStringFields marks fields as string typed, enabling the
// unquoted-numeral rule for them.
func WithStringFields(fields ...string) Option {
	return func(o *options) {
		o.stringFields = slices.Clone(fields)
	}
}

// WithRules uses rules instead of building the pattern library from the
// field options.
func WithRules(rules ...Rule) Option {
	return func(o *options) {
		o.rules = slices.Clone(rules)
	}
}

// Engine runs the repair pipeline with a fixed rule set. It is safe for
// concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine builds the pattern library once for reuse across calls.
func NewEngine(opts ...Option) *Engine {
	cfg := applyOptions(opts)
	rules := cfg.rules
	if rules == nil {
		rules = Rules(RuleConfig{
			ProtectedFields: cfg.protectedFields,
			StringFields:    cfg.stringFields,
		})
	}
	return &Engine{rules: rules}
}

// Rules returns a copy of the engine's rule set in priority order.
func (e *Engine) Rules() []Rule {
	return slices.Clone(e.rules)
}

// Repair takes a potentially malformed JSON payload and tries to recover a
// value from it.
//
// Text that already parses is returned as is. Otherwise the targeted rules
// and the generic normalization run once, and the result is verified. Repair
// never panics on bad input; failures come back as a ParseStateFailed
// outcome.
func (e *Engine) Repair(text string) Outcome {
	if value, err := Verify(text); err == nil {
		return Outcome{State: ParseStateSuccessful, Value: value, Text: text}
	}

	candidate, trace, stageErr := ApplyRules(text, e.rules)
	candidate, steps := normalize(candidate)
	trace = append(trace, steps...)

	value, err := Verify(candidate)
	if err == nil && stageErr == nil {
		return Outcome{State: ParseStateRepaired, Value: value, Trace: trace, Text: candidate}
	}

	uerr := &UnrepairableError{
		Text:          candidate,
		BoundExceeded: errors.Is(stageErr, ErrPipelineBoundExceeded),
	}
	errors.As(stageErr, &uerr.Rule)
	out := Outcome{State: ParseStateFailed, Trace: trace, Text: candidate, Err: uerr}
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		uerr.Syntax = syntaxErr
		out.Position = &syntaxErr.Position
	}
	return out
}

// Repair runs a one-off engine built from opts over text.
//
// Example:
//
//	out := Repair(`{"option":1","field":"value"}`)
//	// out.Value: map[string]any{"option": "1", "field": "value"}, out.WasRepaired(): true
func Repair(text string, opts ...Option) Outcome {
	return NewEngine(opts...).Repair(text)
}
