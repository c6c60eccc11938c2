package jsonmend

import (
	"errors"
	"fmt"
)

// ErrPipelineBoundExceeded is reported when the targeted stage hits its pass
// cap with a rule still triggering.
var ErrPipelineBoundExceeded = errors.New("repair pipeline bound exceeded")

// SyntaxError is a verification failure.
type SyntaxError struct {
	Position ParsePosition
	Msg      string

	err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Position)
}

func (e *SyntaxError) Unwrap() error {
	return e.err
}

// RuleError reports a rule whose trigger or fix panicked.
type RuleError struct {
	ID    string
	Panic any
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q panicked: %v", e.ID, e.Panic)
}

// UnrepairableError is the terminal error of a repair call: the repaired
// text still does not parse, or the targeted stage ran out of passes.
type UnrepairableError struct {
	// Text is the last text the engine attempted to parse.
	Text string
	// Syntax is the final verification failure, if any.
	Syntax *SyntaxError
	// BoundExceeded is set when the targeted stage hit its pass cap.
	BoundExceeded bool
	// Rule is set when a rule panicked and the targeted stage was cut short.
	Rule *RuleError
}

func (e *UnrepairableError) Error() string {
	if e.Rule != nil {
		return fmt.Sprintf("unrepairable payload: %v", e.Rule)
	}
	switch {
	case e.BoundExceeded && e.Syntax != nil:
		return fmt.Sprintf("unrepairable payload: %v: %v", ErrPipelineBoundExceeded, e.Syntax)
	case e.BoundExceeded:
		return fmt.Sprintf("unrepairable payload: %v", ErrPipelineBoundExceeded)
	case e.Syntax != nil:
		return fmt.Sprintf("unrepairable payload: %v", e.Syntax)
	}
	return "unrepairable payload"
}

func (e *UnrepairableError) Unwrap() []error {
	var errs []error
	if e.Syntax != nil {
		errs = append(errs, e.Syntax)
	}
	if e.BoundExceeded {
		errs = append(errs, ErrPipelineBoundExceeded)
	}
	if e.Rule != nil {
		errs = append(errs, e.Rule)
	}
	return errs
}
