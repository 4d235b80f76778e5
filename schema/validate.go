package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Issue is a single validation failure.
type Issue struct {
	Path   string
	Reason string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Reason
	}
	return i.Path + " " + i.Reason
}

// ValidationError lists every field of a payload that did not satisfy its shape.
type ValidationError struct {
	Shape  string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	prefix := e.Shape
	if prefix == "" {
		prefix = "payload"
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

// ValidateJSON validates a JSON document against the shape.
func (s *Shape) ValidateJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("schema: %s: %w", s.Name, err)
	}
	return s.Validate(v)
}

// ValidateValue validates a Go value by looking at its JSON encoding.
func (s *Shape) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("schema: %s: %w", s.Name, err)
	}
	return s.ValidateJSON(data)
}

// Validate checks untyped data, as produced by encoding/json, against the shape.
// Keys the shape does not declare are ignored.
func (s *Shape) Validate(v any) error {
	var issues []Issue
	s.check("", v, &issues)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Shape: s.Name, Issues: issues}
}

func (s *Shape) check(path string, v any, issues *[]Issue) {
	obj, ok := v.(map[string]any)
	if !ok {
		*issues = append(*issues, Issue{Path: path, Reason: "must be an object (was " + typeOf(v) + ")"})
		return
	}
	for _, f := range s.Fields {
		fv, present := obj[f.Name]
		fpath := join(path, f.Name)
		if !present || fv == nil {
			if f.Optional {
				continue
			}
			if !present {
				*issues = append(*issues, Issue{Path: fpath, Reason: "must be present"})
				continue
			}
		}
		f.check(fpath, fv, issues)
	}
}

func (f Field) check(path string, v any, issues *[]Issue) {
	fail := func(reason string) {
		*issues = append(*issues, Issue{Path: path, Reason: reason})
	}

	switch f.Kind {
	case KindAny:
	case KindString:
		str, ok := v.(string)
		if !ok {
			fail("must be a string (was " + typeOf(v) + ")")
			return
		}
		if f.Positive && len(str) == 0 {
			fail("must be non-empty")
		}
	case KindNumber:
		n, ok := number(v)
		if !ok {
			fail("must be a number (was " + typeOf(v) + ")")
			return
		}
		if f.Positive && !(n > 0) {
			fail("must be positive (was " + strconv.FormatFloat(n, 'g', -1, 64) + ")")
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			fail("must be boolean (was " + typeOf(v) + ")")
		}
	case KindObject:
		if f.Shape == nil {
			if _, ok := v.(map[string]any); !ok {
				fail("must be an object (was " + typeOf(v) + ")")
			}
			return
		}
		f.Shape.check(path, v, issues)
	case KindArray:
		items, ok := v.([]any)
		if !ok {
			fail("must be an array (was " + typeOf(v) + ")")
			return
		}
		if f.Elem == nil {
			return
		}
		for i, item := range items {
			f.Elem.check(path+"["+strconv.Itoa(i)+"]", item, issues)
		}
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, json.Number, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
