// Package schema describes the structure of JSON payloads and validates untyped data
// against it.
//
// A Shape is an ordered table of fields. Every field carries a Rule written in the
// arktype expression syntax used throughout the project:
//
//	"string"               any string
//	"string > 0"           non-empty string
//	"number > 0"           strictly positive number
//	"boolean"              true or false
//	"string | undefined"   string, or the key is absent
//
// Shapes are normally not written by hand. They are derived from Go struct types with
// `json` and `ark` tags (see FromType), so the static type and the runtime description
// come from a single declaration.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the JSON type a field accepts.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "any"
	}
}

// Rule is the predicate part of a field declaration.
type Rule struct {
	Kind     Kind
	Positive bool // "> 0": length for strings, value for numbers
	Optional bool // "| undefined"
}

// String renders the rule back into its expression form.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Kind.String())
	if r.Positive {
		b.WriteString(" > 0")
	}
	if r.Optional {
		b.WriteString(" | undefined")
	}
	return b.String()
}

// Field is one entry of a Shape. Object fields point at their nested Shape, array
// fields describe their elements with Elem. A nil Shape or Elem accepts anything.
type Field struct {
	Name string
	Rule
	Shape *Shape
	Elem  *Field
}

// Shape is an immutable structural description of a JSON object.
type Shape struct {
	Name   string
	Fields []Field
}

// New builds a shape from explicit fields.
func New(name string, fields ...Field) *Shape {
	return &Shape{Name: name, Fields: fields}
}

// Field returns the field with the given JSON name.
func (s *Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// String renders the shape as an arktype object literal, e.g. {msg: "string > 0"}.
func (s *Shape) String() string {
	if s == nil {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Name, f.describe())
	}
	b.WriteString("}")
	return b.String()
}

func (f Field) describe() string {
	switch {
	case f.Kind == KindObject && f.Shape != nil:
		return f.Shape.String()
	case f.Kind == KindArray && f.Elem != nil:
		return f.Elem.describe() + "[]"
	default:
		return fmt.Sprintf("%q", f.Rule.String())
	}
}
