package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationTable(t *testing.T) {
	testCases := []struct {
		op       Operation
		path     string
		request  string
		response string
	}{
		{
			op:       AName,
			path:     "/a_name",
			request:  `{msg: "string > 0"}`,
			response: `{msg: "string > 0"}`,
		},
		{
			op:       Eins,
			path:     "/eins",
			request:  `{requiredString: "string > 0", optionalString: "string | undefined", requiredInt: "number > 0", optionalInt: "number | undefined", requiredBool: "boolean", optionalBool: "boolean | undefined"}`,
			response: `{responseString: "string > 0"}`,
		},
		{
			op:       Listen,
			path:     "/listen",
			request:  `{}`,
			response: `{dinge: {id: "number", name: "string > 0"}[]}`,
		},
		{
			op:       Zwei,
			path:     "/zwei",
			request:  `{optionalString: "string | undefined"}`,
			response: `{responseString: "string > 0"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.op.Name, func(t *testing.T) {
			assert.Equal(t, tc.path, tc.op.Path)
			assert.Equal(t, tc.request, tc.op.Request.String())
			assert.Equal(t, tc.response, tc.op.Response.String())
		})
	}
}

func TestOperationsSortedAndUnique(t *testing.T) {
	ops := Operations()
	require.Len(t, ops, 4)

	names := make([]string, len(ops))
	paths := map[string]bool{}
	for i, op := range ops {
		names[i] = op.Name
		paths[op.Path] = true
	}
	assert.Equal(t, []string{"a_name", "eins", "listen", "zwei"}, names)
	assert.Len(t, paths, 4)

	// Callers get a copy
	ops[0].Path = "/changed"
	assert.Equal(t, "/a_name", Operations()[0].Path)
}

func TestLookup(t *testing.T) {
	for _, key := range []string{"a_name", "A_NAME", "AName", "aname", "/a_name"} {
		op, ok := Lookup(key)
		require.True(t, ok, key)
		assert.Equal(t, ANamePath, op.Path)
	}

	_, ok := Lookup("/ohne_request")
	assert.False(t, ok)
}

func TestRequestShapesAcceptTypedValues(t *testing.T) {
	// Optional fields left nil are omitted and must still validate
	assert.NoError(t, Eins.Request.ValidateValue(EinsRequest{RequiredString: "x", RequiredInt: 1, RequiredBool: true}))
	assert.NoError(t, Zwei.Request.ValidateValue(ZweiRequest{}))
	assert.NoError(t, Listen.Request.ValidateValue(ListenRequest{}))

	full := EinsRequest{
		RequiredString: "x",
		OptionalString: Ptr(""),
		RequiredInt:    2,
		OptionalInt:    Ptr(0),
		RequiredBool:   false,
		OptionalBool:   Ptr(true),
	}
	assert.NoError(t, Eins.Request.ValidateValue(full))

	err := Eins.Request.ValidateValue(EinsRequest{RequiredInt: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requiredString must be non-empty")
	assert.Contains(t, err.Error(), "requiredInt must be positive (was 0)")
}

func TestResponseShapes(t *testing.T) {
	assert.NoError(t, Listen.Response.ValidateJSON([]byte(`{"dinge":[{"id":1,"name":"a"},{"id":0,"name":"b"}]}`)))
	assert.Error(t, Listen.Response.ValidateJSON([]byte(`{"dinge":[{"id":1,"name":""}]}`)))
	assert.Error(t, Listen.Response.ValidateJSON([]byte(`{"dinge":null}`)))

	data, err := json.Marshal(ZweiResponse{ResponseString: "ok"})
	require.NoError(t, err)
	assert.NoError(t, Zwei.Response.ValidateJSON(data))
	assert.NoError(t, DingShape.ValidateJSON([]byte(`{"id":3,"name":"x"}`)))
}
