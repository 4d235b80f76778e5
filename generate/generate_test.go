package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDir(t *testing.T) {
	m, err := New(zerolog.Nop()).ParseDir("testdata/basic")
	require.NoError(t, err)

	names := make([]string, len(m.Operations))
	for i, op := range m.Operations {
		names[i] = op.Name + " " + op.Path
	}
	assert.Equal(t, []string{"A_Name /a_name", "Eins /eins", "Listen /listen", "Zwei /zwei"}, names)

	want := []Schema{{
		Name: "Ding_DTO",
		Properties: []Property{
			{Name: "id", Type: "number"},
			{Name: "name", Type: "string > 0"},
			{Name: "Tags", Type: "string[]"},
			{Name: "blob", Type: "string"},
		},
	}}
	if diff := cmp.Diff(want, m.DTOs); diff != "" {
		t.Fatalf("DTOs mismatch (-want +got):\n%s", diff)
	}

	eins := m.Operations[1]
	wantEins := []Property{
		{Name: "requiredString", Type: "string > 0"},
		{Name: "optionalString", Type: "string | undefined"},
		{Name: "requiredInt", Type: "number > 0"},
		{Name: "optionalInt", Type: "number | undefined"},
		{Name: "requiredBool", Type: "boolean"},
		{Name: "optionalBool", Type: "boolean | undefined"},
	}
	if diff := cmp.Diff(wantEins, eins.Request.Properties); diff != "" {
		t.Fatalf("Eins_Request mismatch (-want +got):\n%s", diff)
	}

	aname := m.Operations[0]
	assert.Equal(t, []Property{{Name: "msg", Type: "string > 0"}}, aname.Response.Properties)

	listen := m.Operations[2]
	assert.Empty(t, listen.Request.Properties)
	assert.Equal(t, []Property{
		{Name: "dinge", Type: "Ding_DTO_Schema.array()", Raw: true},
		{Name: "meta", Type: "type.unknown", Raw: true},
	}, listen.Response.Properties)
}

func TestWriteTS(t *testing.T) {
	m, err := New(zerolog.Nop()).ParseDir("testdata/basic")
	require.NoError(t, err)
	ts, err := m.TS()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ts, "import { type } from \"arktype\";\n\nexport const Ding_DTO_Schema = type({\n"))
	assert.True(t, strings.HasSuffix(ts, "Zwei_Path, args);\n}\n"))

	for _, snippet := range []string{
		"export const Ding_DTO_Schema = type({\n  id: \"number\",\n  name: \"string > 0\",\n  Tags: \"string[]\",\n  blob: \"string\",\n});\nexport type Ding_DTO = typeof Ding_DTO_Schema.infer;\n\n",
		"export const A_Name_Path = \"/a_name\";\nexport const A_Name_Request_Schema = type({\n  msg: \"string > 0\",\n});\n",
		"export const Listen_Request_Schema = type({});\nexport type Listen_Request = typeof Listen_Request_Schema.infer;\n",
		"  dinge: Ding_DTO_Schema.array(),\n",
		"  optionalInt: \"number | undefined\",\n",
		"\"Content-Type\": \"application/json\"",
		"handle_error(result.clone())",
		"\"Unknown error\"",
		"  a_name = (args: A_Name_Request) =>\n    this.#call<A_Name_Request, A_Name_Response>(A_Name_Path, args);\n\n  eins = (args: Eins_Request) =>",
	} {
		assert.Contains(t, ts, snippet)
	}

	// Operations and DTOs appear in name order
	order := []string{"Ding_DTO_Schema", "A_Name_Path", "Eins_Path", "Listen_Path", "Zwei_Path", "export class RPC_Client", "  a_name =", "  eins =", "  listen =", "  zwei ="}
	last := -1
	for _, s := range order {
		idx := strings.Index(ts, s)
		require.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}

	for _, ignored := range []string{"Without_Path", "Without_Request", "Nested", "Notes", "Test_Path", "Other", "Alias", "Count", "internal", "Skipped"} {
		assert.NotContains(t, ts, ignored)
	}
}

func TestGenerate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "rpc.ts")
	require.NoError(t, New(zerolog.Nop()).Generate("testdata/basic", target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)

	m, err := New(zerolog.Nop()).ParseDir("testdata/basic")
	require.NoError(t, err)
	want, err := m.TS()
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestGenerateErrors(t *testing.T) {
	g := New(zerolog.Nop())

	_, err := g.ParseDir("testdata/missing")
	assert.ErrorContains(t, err, "reading testdata/missing")

	_, err = g.ParseDir("testdata/broken")
	assert.ErrorContains(t, err, "parsing testdata/broken/broken.go")

	_, err = g.ParseDir("testdata/badtag")
	assert.ErrorContains(t, err, "Bad_Request.Field")
}

func TestEmptyModel(t *testing.T) {
	ts, err := (&Model{}).TS()
	require.NoError(t, err)
	assert.Equal(t, "import { type } from \"arktype\";\n\nexport class RPC_Client {", ts[:len("import { type } from \"arktype\";\n\nexport class RPC_Client {")])
	assert.True(t, strings.HasSuffix(ts, "  }\n\n}\n"))
}

func TestGoldenModule(t *testing.T) {
	m, err := New(zerolog.Nop()).ParseDir("testdata/golden")
	require.NoError(t, err)
	got, err := m.TS()
	require.NoError(t, err)

	golden, err := os.ReadFile("testdata/golden/basic.ts")
	require.NoError(t, err)

	// The only departures from the reference module: the hook receives a clone, and an
	// unreadable body or an empty message falls back to "Unknown error".
	want := string(golden)
	for _, r := range []struct{ from, to string }{
		{
			from: "this.options.handle_error(result);",
			to:   "this.options.handle_error(result.clone());",
		},
		{
			from: "        return {\n          value: null,\n          error: (await result.json())?.message ?? 'Unknown error',\n",
			to:   "        const body = await result.json().catch(() => null);\n        return {\n          value: null,\n          error: body?.message || \"Unknown error\",\n",
		},
		{
			from: `error instanceof Error ? error.message : "Unknown error"`,
			to:   `error instanceof Error && error.message ? error.message : "Unknown error"`,
		},
	} {
		require.Contains(t, want, r.from)
		want = strings.Replace(want, r.from, r.to, 1)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("generated module mismatch (-want +got):\n%s", diff)
	}
}
