package message

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	ResponseString string `json:"responseString"`
}

func TestFailNeverEmpty(t *testing.T) {
	assert.Equal(t, UnknownError, Fail[reply]("").Error)
	assert.Equal(t, UnknownError, FailErr[reply](nil).Error)
	assert.Equal(t, UnknownError, FailErr[reply](errors.New("")).Error)
	assert.Equal(t, "boom", FailErr[reply](errors.New("boom")).Error)
	assert.False(t, Fail[reply]("x").OK())
	assert.True(t, Ok(reply{}).OK())
}

func TestResultJSON(t *testing.T) {
	testCases := []struct {
		name   string
		result Result[reply]
		want   string
	}{
		{
			name:   "success",
			result: Ok(reply{ResponseString: "ok"}),
			want:   `{"value":{"responseString":"ok"},"error":null}`,
		},
		{
			name:   "failure",
			result: Fail[reply]("Unknown error"),
			want:   `{"value":null,"error":"Unknown error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.result)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))

			var back Result[reply]
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tc.result, back)
		})
	}
}

func TestConvert(t *testing.T) {
	want := reply{ResponseString: "ok"}

	testCases := []struct {
		name string
		in   Result[any]
		want Result[reply]
	}{
		{name: "typed value", in: Ok[any](want), want: Ok(want)},
		{name: "pointer value", in: Ok[any](&want), want: Ok(want)},
		{name: "raw json", in: Ok[any](json.RawMessage(`{"responseString":"ok"}`)), want: Ok(want)},
		{name: "bytes", in: Ok[any]([]byte(`{"responseString":"ok"}`)), want: Ok(want)},
		{name: "map", in: Ok[any](map[string]any{"responseString": "ok"}), want: Ok(want)},
		{name: "failure", in: Fail[any]("nope"), want: Fail[reply]("nope")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Convert[reply](tc.in))
		})
	}
}

func TestConvertUndecodable(t *testing.T) {
	got := Convert[reply](Ok[any](json.RawMessage(`"just a string"`)))
	assert.False(t, got.OK())
	assert.Contains(t, got.Error, "decoding response")
}
