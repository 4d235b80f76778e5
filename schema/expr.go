package schema

import (
	"fmt"
	"strings"
)

// RawPrefix marks an ark tag that holds a verbatim expression (for example
// "type:Ding_DTO_Schema.array()"). Such tags only matter to code generation; the runtime
// rule is inferred from the Go type instead.
const RawPrefix = "type:"

// ParseRule parses an arktype field expression.
//
// Supported forms are a base kind ("string", "number", "boolean", "any", "object",
// "array"), an optional "> 0" bound on strings and numbers, and a trailing
// "| undefined" alternative.
func ParseRule(expr string) (Rule, error) {
	var r Rule
	rest := strings.TrimSpace(expr)
	if rest == "" {
		return r, fmt.Errorf("schema: empty expression")
	}

	alts := strings.Split(rest, "|")
	base := ""
	for _, alt := range alts {
		alt = strings.TrimSpace(alt)
		switch {
		case alt == "undefined":
			r.Optional = true
		case base == "":
			base = alt
		default:
			return r, fmt.Errorf("schema: unsupported union %q", expr)
		}
	}
	if base == "" {
		return r, fmt.Errorf("schema: expression %q has no base type", expr)
	}

	if name, bound, ok := strings.Cut(base, ">"); ok {
		if strings.TrimSpace(bound) != "0" {
			return r, fmt.Errorf("schema: unsupported bound in %q", expr)
		}
		r.Positive = true
		base = strings.TrimSpace(name)
	}

	switch base {
	case "string":
		r.Kind = KindString
	case "number":
		r.Kind = KindNumber
	case "boolean":
		r.Kind = KindBoolean
	case "object":
		r.Kind = KindObject
	case "array":
		r.Kind = KindArray
	case "any", "unknown":
		r.Kind = KindAny
	default:
		return r, fmt.Errorf("schema: unknown type %q in %q", base, expr)
	}

	if r.Positive && r.Kind != KindString && r.Kind != KindNumber {
		return r, fmt.Errorf("schema: %q cannot be bounded", base)
	}
	return r, nil
}

// MustParseRule is ParseRule for static declarations.
func MustParseRule(expr string) Rule {
	r, err := ParseRule(expr)
	if err != nil {
		panic(err)
	}
	return r
}
