package jsonmend

import "encoding/json"

// Outcome is the result of one repair call. State tags which variant it is:
// ParseStateSuccessful and ParseStateRepaired carry Value, ParseStateFailed
// carries Position and Err.
type Outcome struct {
	State ParseState
	Value any
	Trace Trace
	// Text is the last text verified: the input itself when it parsed as is,
	// otherwise the repaired candidate.
	Text     string
	Position *ParsePosition
	Err      error
}

// OK reports whether a value was recovered.
func (o Outcome) OK() bool {
	return o.State == ParseStateSuccessful || o.State == ParseStateRepaired
}

// WasRepaired reports whether the value was only recovered after repair.
func (o Outcome) WasRepaired() bool {
	return o.State == ParseStateRepaired
}

type outcomeJSON struct {
	OK          bool          `json:"ok"`
	Value       any           `json:"value,omitempty"`
	WasRepaired bool          `json:"wasRepaired"`
	Trace       Trace         `json:"trace"`
	Error       *outcomeError `json:"error,omitempty"`
}

type outcomeError struct {
	Message string `json:"message"`
	Offset  int    `json:"offset"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Context string `json:"context"`
}

// MarshalJSON encodes the outcome in its logging form.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{
		OK:          o.OK(),
		WasRepaired: o.WasRepaired(),
		Trace:       o.Trace,
	}
	if out.Trace == nil {
		out.Trace = Trace{}
	}
	if out.OK {
		out.Value = o.Value
	} else {
		out.Error = &outcomeError{}
		if o.Err != nil {
			out.Error.Message = o.Err.Error()
		}
		if p := o.Position; p != nil {
			out.Error.Offset = p.Offset
			out.Error.Line = p.Line
			out.Error.Column = p.Column
			out.Error.Context = p.Context
		}
	}
	return json.Marshal(out)
}
