package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structtag"
)

var derived sync.Map // reflect.Type -> *Shape

// Of derives the shape of T. T must be a struct type (or a pointer to one).
func Of[T any]() (*Shape, error) {
	return FromType(reflect.TypeOf((*T)(nil)).Elem())
}

// MustOf is Of for package-level declarations.
func MustOf[T any]() *Shape {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// FromType derives a shape from a struct type.
//
// For every exported field the JSON name comes from the `json` tag and the rule from
// the `ark` tag. Without an `ark` tag the rule is inferred from the Go type, and pointer
// fields become optional. Nested structs become nested shapes, slices become arrays.
func FromType(t reflect.Type) (*Shape, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}
	if s, ok := derived.Load(t); ok {
		return s.(*Shape), nil
	}
	s, err := deriveStruct(t, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	actual, _ := derived.LoadOrStore(t, s)
	return actual.(*Shape), nil
}

func deriveStruct(t reflect.Type, visiting map[reflect.Type]bool) (*Shape, error) {
	if visiting[t] {
		return nil, fmt.Errorf("schema: recursive type %s", t)
	}
	visiting[t] = true
	defer delete(visiting, t)

	shape := &Shape{Name: t.Name()}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, expr, skip, err := fieldTags(sf)
		if err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %w", t.Name(), sf.Name, err)
		}
		if skip {
			continue
		}

		if sf.Anonymous && name == "" && indirect(sf.Type).Kind() == reflect.Struct {
			inner, err := deriveStruct(indirect(sf.Type), visiting)
			if err != nil {
				return nil, err
			}
			shape.Fields = append(shape.Fields, inner.Fields...)
			continue
		}
		if name == "" {
			name = sf.Name
		}

		f, err := deriveField(sf.Type, expr, visiting)
		if err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %w", t.Name(), sf.Name, err)
		}
		f.Name = name
		shape.Fields = append(shape.Fields, f)
	}
	return shape, nil
}

func fieldTags(sf reflect.StructField) (name, expr string, skip bool, err error) {
	tags, err := structtag.Parse(string(sf.Tag))
	if err != nil {
		return "", "", false, err
	}
	if tags == nil {
		return "", "", false, nil
	}
	if jt, err := tags.Get("json"); err == nil {
		if jt.Name == "-" && len(jt.Options) == 0 {
			return "", "", true, nil
		}
		name = jt.Name
	}
	if at, err := tags.Get("ark"); err == nil {
		expr = at.Value()
	}
	return name, expr, false, nil
}

func deriveField(t reflect.Type, expr string, visiting map[reflect.Type]bool) (Field, error) {
	var f Field
	optional := false
	for t.Kind() == reflect.Pointer {
		optional = true
		t = t.Elem()
	}

	inferred, err := inferKind(t)
	if err != nil {
		return f, err
	}

	switch {
	case expr == "" || strings.HasPrefix(expr, RawPrefix):
		f.Rule = Rule{Kind: inferred, Optional: optional}
	default:
		r, err := ParseRule(expr)
		if err != nil {
			return f, err
		}
		if r.Kind != KindAny && inferred != KindAny && r.Kind != inferred {
			return f, fmt.Errorf("ark type %s does not match Go type %s", r.Kind, t)
		}
		f.Rule = r
	}

	switch f.Kind {
	case KindObject:
		if t.Kind() == reflect.Struct {
			if f.Shape, err = deriveStruct(t, visiting); err != nil {
				return f, err
			}
		}
	case KindArray:
		if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			elem, err := deriveField(t.Elem(), "", visiting)
			if err != nil {
				return f, err
			}
			elem.Optional = false
			f.Elem = &elem
		}
	}
	return f, nil
}

func inferKind(t reflect.Type) (Kind, error) {
	switch t.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Bool:
		return KindBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, nil
	case reflect.Struct, reflect.Map:
		return KindObject, nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// []byte is a base64 string on the wire.
			return KindString, nil
		}
		return KindArray, nil
	case reflect.Interface:
		return KindAny, nil
	default:
		return KindAny, fmt.Errorf("unsupported Go type %s", t)
	}
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
