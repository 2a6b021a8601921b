package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerJSON_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "integer from numeric column", value: int64(42), want: `42`},
		{name: "negative integer", value: int64(-1), want: `-1`},
		{name: "real from numeric column", value: float64(-3.5), want: `-3.5`},
		{name: "text", value: `[0,2]`, want: `[0,2]`},
		{name: "bytes", value: []byte(`["Paris"]`), want: `["Paris"]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var a AnswerJSON
			require.NoError(t, a.Scan(tc.value))
			assert.Equal(t, tc.want, string(a))
		})
	}

	var a AnswerJSON
	assert.Error(t, a.Scan(true))
}

func TestAnswerJSON_ScannedScalarsDecode(t *testing.T) {
	var single AnswerJSON
	require.NoError(t, single.Scan(int64(2)))
	key, err := DecodeAnswerKey(SingleSelect, single)
	require.NoError(t, err)
	assert.Equal(t, SingleSelectKey{Index: 2}, key)

	var integer AnswerJSON
	require.NoError(t, integer.Scan(float64(42)))
	key, err = DecodeAnswerKey(Integer, integer)
	require.NoError(t, err)
	assert.Equal(t, IntegerKey{Value: 42}, key)
}

func TestAnswerJSON_JSON(t *testing.T) {
	var q struct {
		CorrectAnswer AnswerJSON `json:"correct_answer"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"correct_answer":[1,3]}`), &q))
	assert.Equal(t, `[1,3]`, string(q.CorrectAnswer))

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"correct_answer":[1,3]}`, string(out))
}

func TestDecodeIndexSet_StrictAndLenient(t *testing.T) {
	tests := []struct {
		raw        string
		strict     []int
		strictOK   bool
		selections []int
		lenientOK  bool
	}{
		{raw: `[0,2,0]`, strict: []int{0, 2}, strictOK: true, selections: []int{0, 2}, lenientOK: true},
		{raw: `[0,"x"]`, selections: []int{0}, lenientOK: true},
		{raw: `[0,1.5]`, selections: []int{0}, lenientOK: true},
		{raw: `[0,null]`, selections: []int{0}, lenientOK: true},
		{raw: `["a"]`, selections: []int{}, lenientOK: true},
		{raw: `0`},
		{raw: `{"0":true}`},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := DecodeIndexSet([]byte(tc.raw))
			assert.Equal(t, tc.strictOK, ok)
			if tc.strictOK {
				assert.Equal(t, tc.strict, got)
			}

			got, ok = DecodeSelections([]byte(tc.raw))
			assert.Equal(t, tc.lenientOK, ok)
			if tc.lenientOK {
				assert.Equal(t, tc.selections, got)
			}
		})
	}
}
