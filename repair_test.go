package jsonmend

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRepair(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		opts  []Option
		state ParseState
		value any
		trace Trace
	}{
		{
			name:  "already_valid",
			input: `{"option":1,"field":"value"}`,
			state: ParseStateSuccessful,
			value: map[string]any{"option": float64(1), "field": "value"},
		},
		{
			name:  "stray_quote",
			input: `{"option":1","field":"value"}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": "1", "field": "value"},
			trace: Trace{"stray-quote:option"},
		},
		{
			name:  "nested_stray_quote",
			input: `{"data":{"metadata":{"analysis_option":1","time_range":"30d"}}}`,
			state: ParseStateRepaired,
			value: map[string]any{"data": map[string]any{"metadata": map[string]any{
				"analysis_option": "1",
				"time_range":      "30d",
			}}},
			trace: Trace{"stray-quote:analysis_option"},
		},
		{
			name:  "trailing_comma",
			input: `{"option":1,"field":"value",}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": float64(1), "field": "value"},
			trace: Trace{"normalize:trailing-commas"},
		},
		{
			name:  "unclosed_quote",
			input: `{"option":"1,"field":"value"}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": "1", "field": "value"},
			trace: Trace{"unclosed-quote:option"},
		},
		{
			name:  "stray_quote_exponent",
			input: `{"option":1e5","x":1}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": "1e5", "x": float64(1)},
			trace: Trace{"stray-quote:option"},
		},
		{
			name:  "string_value_ending_in_comma",
			input: `{"option":"1,", "x":1,}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": "1,", "x": float64(1)},
			trace: Trace{"normalize:trailing-commas"},
		},
		{
			name:  "string_value_ending_in_brace",
			input: `{"option":"1}","x":1,}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": "1}", "x": float64(1)},
			trace: Trace{"normalize:trailing-commas"},
		},
		{
			name:  "string_value_ending_in_bracket",
			input: `{"option":"2]","x":1,}`,
			state: ParseStateRepaired,
			value: map[string]any{"option": "2]", "x": float64(1)},
			trace: Trace{"normalize:trailing-commas"},
		},
		{
			name:  "unquoted_string_field",
			input: `{"code":42,"field":"value",}`,
			opts:  []Option{WithStringFields("code")},
			state: ParseStateRepaired,
			value: map[string]any{"code": "42", "field": "value"},
			trace: Trace{"unquoted-numeral:code", "normalize:trailing-commas"},
		},
		{
			name:  "unquoted_field_not_string_typed",
			input: `{"code":42,"field":"value",}`,
			state: ParseStateRepaired,
			value: map[string]any{"code": float64(42), "field": "value"},
			trace: Trace{"normalize:trailing-commas"},
		},
		{
			name:  "custom_protected_field",
			input: `{"score":3","field":"value"}`,
			opts:  []Option{WithProtectedFields("score")},
			state: ParseStateRepaired,
			value: map[string]any{"score": "3", "field": "value"},
			trace: Trace{"stray-quote:score"},
		},
		{
			name:  "targeted_and_generic",
			input: "{\"option\":1\",\x01 \"path\":\"a\\d\",}",
			state: ParseStateRepaired,
			value: map[string]any{"option": "1", "path": `a\d`},
			trace: Trace{"stray-quote:option", "normalize:control-chars", "normalize:backslash-escapes", "normalize:trailing-commas"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := Repair(tc.input, tc.opts...)
			require.NoError(t, out.Err)
			require.True(t, out.OK())
			require.Equal(t, tc.state, out.State)
			require.Equal(t, tc.state == ParseStateRepaired, out.WasRepaired())
			require.Equal(t, tc.value, out.Value)
			require.Equal(t, tc.trace, out.Trace)
			require.Nil(t, out.Position)
		})
	}
}

func TestRepairLeavesValidInput(t *testing.T) {
	t.Parallel()

	for _, doc := range validDocuments {
		out := Repair(doc)
		require.Equal(t, ParseStateSuccessful, out.State, doc)
		require.False(t, out.WasRepaired())
		require.Empty(t, out.Trace)
		require.Equal(t, doc, out.Text)
	}
}

func TestRepairUnrepairable(t *testing.T) {
	t.Parallel()

	t.Run("stray quote in array", func(t *testing.T) {
		t.Parallel()

		in := `{"items":[1,2",3]}`
		out := Repair(in)
		require.Equal(t, ParseStateFailed, out.State)
		require.False(t, out.OK())
		require.Nil(t, out.Value)
		require.Equal(t, in, out.Text)
		require.NotNil(t, out.Position)
		require.Equal(t, strings.Index(in, `2"`)+1, out.Position.Offset)
		require.Equal(t, byte('"'), in[out.Position.Offset])

		var uerr *UnrepairableError
		require.ErrorAs(t, out.Err, &uerr)
		require.False(t, uerr.BoundExceeded)
		require.Equal(t, in, uerr.Text)

		var syntaxErr *SyntaxError
		require.ErrorAs(t, out.Err, &syntaxErr)
		require.Equal(t, *out.Position, syntaxErr.Position)
		require.NotErrorIs(t, out.Err, ErrPipelineBoundExceeded)
	})

	// Repair runs once: a stray quote behind a bare key is only exposed by
	// normalization, after targeted repair already ran.
	t.Run("single pass", func(t *testing.T) {
		t.Parallel()

		in := `{option:1","field":"value"}`
		out := Repair(in)
		require.Equal(t, ParseStateFailed, out.State)
		require.Equal(t, Trace{"normalize:bare-keys"}, out.Trace)
		require.Equal(t, `{"option":1","field":"value"}`, out.Text)
		require.Equal(t, strings.Index(out.Text, `1"`)+1, out.Position.Offset)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		out := Repair("")
		require.Equal(t, ParseStateFailed, out.State)
		require.Equal(t, 0, out.Position.Offset)
	})

	t.Run("bound exceeded", func(t *testing.T) {
		t.Parallel()

		loop := Rule{
			ID:      "loop",
			Trigger: func(string) bool { return true },
			Apply:   func(s string) string { return s + " " },
		}
		out := Repair(`{"a":1,}`, WithRules(loop))
		require.Equal(t, ParseStateFailed, out.State)
		require.ErrorIs(t, out.Err, ErrPipelineBoundExceeded)
		require.Contains(t, out.Trace, TraceBoundExceeded)
		require.Nil(t, out.Position)

		var uerr *UnrepairableError
		require.ErrorAs(t, out.Err, &uerr)
		require.True(t, uerr.BoundExceeded)
		require.Nil(t, uerr.Syntax)
	})

	t.Run("rule panics", func(t *testing.T) {
		t.Parallel()

		broken := Rule{
			ID:      "broken",
			Trigger: func(string) bool { return true },
			Apply:   func(string) string { panic("boom") },
		}
		var out Outcome
		require.NotPanics(t, func() {
			out = Repair(`{"a":1,}`, WithRules(broken))
		})
		require.Equal(t, ParseStateFailed, out.State)
		require.Equal(t, Trace{"normalize:trailing-commas"}, out.Trace)

		var ruleErr *RuleError
		require.ErrorAs(t, out.Err, &ruleErr)
		require.Equal(t, "broken", ruleErr.ID)
		require.NotErrorIs(t, out.Err, ErrPipelineBoundExceeded)
	})
}

func TestEngine(t *testing.T) {
	t.Parallel()

	engine := NewEngine(WithProtectedFields("option"), WithStringFields("code"))
	var ids []string
	for _, r := range engine.Rules() {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"stray-quote:option", "unclosed-quote:option", "unquoted-numeral:code"}, ids)

	out := engine.Repair(`{"option":1","code":7,}`)
	require.True(t, out.WasRepaired())
	require.Equal(t, map[string]any{"option": "1", "code": "7"}, out.Value)
}

func TestEngineConcurrentRepair(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := NewEngine()
	inputs := map[string]ParseState{
		`{"option":1,"field":"value"}`:  ParseStateSuccessful,
		`{"option":1","field":"value"}`: ParseStateRepaired,
		`{"option":1,"field":"value",}`: ParseStateRepaired,
		`{"items":[1,2",3]}`:            ParseStateFailed,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for range 16 {
		for in, want := range inputs {
			wg.Go(func() {
				if got := engine.Repair(in).State; got != want {
					errs <- errors.New(in + ": got " + string(got) + ", want " + string(want))
				}
			})
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
