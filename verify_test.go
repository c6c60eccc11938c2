package jsonmend

import (
	"encoding/json"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		value, err := Verify(`{"a":[1,2]}`)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, value)
	})

	cases := []struct {
		name   string
		input  string
		offset int
		line   int
		column int
	}{
		{name: "stray_quote_in_array", input: `{"items":[1,2",3]}`, offset: 13, line: 1, column: 14},
		{name: "unexpected_end", input: `{"a":1`, offset: 5, line: 1, column: 6},
		{name: "multiline", input: "{\n  \"a\": 1,\n  \"b\": x\n}", offset: 19, line: 3, column: 8},
		{name: "empty", input: ``, offset: 0, line: 1, column: 1},
		{name: "trailing_garbage", input: `{} x`, offset: 3, line: 1, column: 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			value, err := Verify(tc.input)
			require.Nil(t, value)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tc.offset, syntaxErr.Position.Offset)
			assert.Equal(t, tc.line, syntaxErr.Position.Line)
			assert.Equal(t, tc.column, syntaxErr.Position.Column)
			assert.NotEmpty(t, syntaxErr.Msg)

			var jsonErr *json.SyntaxError
			assert.True(t, errors.As(err, &jsonErr))
		})
	}
}

func TestVerifyContextWindow(t *testing.T) {
	t.Parallel()

	_, err := Verify(`{"items":[1,2",3]}`)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	require.Equal(t, `tems":[1,2",3]}`, syntaxErr.Position.Context)
	require.LessOrEqual(t, len(syntaxErr.Position.Context), ContextWindow)

	_, err = Verify(`{"é":"éééééééééééé" x}`)
	require.ErrorAs(t, err, &syntaxErr)
	require.True(t, utf8.ValidString(syntaxErr.Position.Context))
	require.Contains(t, syntaxErr.Position.Context, "x")
}
