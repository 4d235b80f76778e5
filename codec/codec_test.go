package codec

import (
	"encoding/json"
	"testing"
)

type einsArgs struct {
	RequiredString string  `json:"requiredString"`
	OptionalString *string `json:"optionalString,omitempty"`
	RequiredInt    int     `json:"requiredInt"`
}

func TestJSONCodec(t *testing.T) {
	jsonCodec := &JSONCodec{}

	original := &einsArgs{RequiredString: "x", RequiredInt: 1}

	data, err := jsonCodec.Encode(original)
	if err != nil {
		t.Fatalf("JSONCodec Encode failed: %v", err)
	}

	// Absent optional fields must not appear on the wire
	if string(data) != `{"requiredString":"x","requiredInt":1}` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var decoded einsArgs
	if err := jsonCodec.Decode(data, &decoded); err != nil {
		t.Fatalf("JSONCodec Decode failed: %v", err)
	}

	if decoded.RequiredString != original.RequiredString || decoded.RequiredInt != original.RequiredInt {
		t.Errorf("mismatch: got %+v, want %+v", decoded, original)
	}
	if decoded.OptionalString != nil {
		t.Errorf("expect absent optionalString, got %q", *decoded.OptionalString)
	}
}

func TestJSONCodecDecodeErrors(t *testing.T) {
	jsonCodec := &JSONCodec{}

	cases := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"html", "<html>not found</html>"},
		{"truncated", `{"responseString":`},
	}

	for _, tc := range cases {
		var raw json.RawMessage
		if err := jsonCodec.Decode([]byte(tc.body), &raw); err == nil {
			t.Errorf("%s: expect decode error", tc.name)
		}
	}
}

func TestDefaultContentType(t *testing.T) {
	if Default.ContentType() != "application/json" {
		t.Fatalf("expect application/json, got %s", Default.ContentType())
	}
}
