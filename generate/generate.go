// Package generate turns Go request/response declarations into a TypeScript module with
// arktype schemas and a matching RPC client.
//
// Declarations are matched by name suffix:
//
//	const Eins_Path = "/eins"          operation path
//	type Eins_Request struct { ... }   request schema
//	type Eins_Response struct { ... }  response schema
//	type Ding_DTO struct { ... }       shared schema
//
// An operation is emitted only when its path, request and response are all declared.
package generate

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/structtag"
	"github.com/rs/zerolog"

	"github.com/kuechlerm/arkstruct/schema"
)

const (
	pathSuffix     = "_Path"
	requestSuffix  = "_Request"
	responseSuffix = "_Response"
	dtoSuffix      = "_DTO"
)

// Property is one schema entry.
type Property struct {
	Name string // JSON name
	Type string // arktype expression
	Raw  bool   // Type is emitted verbatim instead of as a string literal
}

type Schema struct {
	Name       string
	Properties []Property
}

// Operation is a complete path/request/response triple. Name is the shared prefix,
// e.g. "A_Name".
type Operation struct {
	Name     string
	Path     string
	Request  Schema
	Response Schema
}

// Model is everything found in a directory, sorted by name.
type Model struct {
	DTOs       []Schema
	Operations []Operation
}

// Generator parses Go sources and renders TypeScript.
type Generator struct {
	Log zerolog.Logger
}

func New(log zerolog.Logger) *Generator {
	return &Generator{Log: log}
}

// Generate reads the Go files in dir and writes the TypeScript module to target.
func (g *Generator) Generate(dir, target string) error {
	model, err := g.ParseDir(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if err := model.WriteTS(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	g.Log.Info().Str("target", target).Int("operations", len(model.Operations)).Int("dtos", len(model.DTOs)).Msg("generated")
	return nil
}

// ParseDir collects declarations from the .go files directly inside dir. Test files and
// subdirectories are ignored.
func (g *Generator) ParseDir(dir string) (*Model, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	c := newCollector(g.Log)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if err := c.parseFile(filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}
	return c.model(), nil
}

type partial struct {
	path     string
	hasPath  bool
	request  *Schema
	response *Schema
}

type collector struct {
	fset *token.FileSet
	log  zerolog.Logger
	ops  map[string]*partial
	dtos []Schema
}

func newCollector(log zerolog.Logger) *collector {
	return &collector{fset: token.NewFileSet(), log: log, ops: make(map[string]*partial)}
}

func (c *collector) op(name string) *partial {
	p, ok := c.ops[name]
	if !ok {
		p = &partial{}
		c.ops[name] = p
	}
	return p
}

func (c *collector) parseFile(filename string) error {
	file, err := parser.ParseFile(c.fset, filename, nil, parser.SkipObjectResolution)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			switch s := spec.(type) {
			case *ast.ValueSpec:
				if gd.Tok == token.CONST {
					c.constSpec(s)
				}
			case *ast.TypeSpec:
				if err := c.typeSpec(s); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *collector) constSpec(s *ast.ValueSpec) {
	for i, ident := range s.Names {
		prefix, ok := trimSuffix(ident.Name, pathSuffix)
		if !ok || i >= len(s.Values) {
			continue
		}
		lit, ok := s.Values[i].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			continue
		}
		path, err := strconv.Unquote(lit.Value)
		if err != nil {
			continue
		}
		p := c.op(prefix)
		p.path, p.hasPath = path, true
	}
}

func (c *collector) typeSpec(s *ast.TypeSpec) error {
	st, ok := s.Type.(*ast.StructType)
	if !ok {
		return nil
	}
	name := s.Name.Name

	if _, ok := trimSuffix(name, dtoSuffix); ok {
		sc, err := c.schema(name, st)
		if err != nil {
			return err
		}
		c.dtos = append(c.dtos, sc)
		return nil
	}
	if prefix, ok := trimSuffix(name, requestSuffix); ok {
		sc, err := c.schema(name, st)
		if err != nil {
			return err
		}
		c.op(prefix).request = &sc
		return nil
	}
	if prefix, ok := trimSuffix(name, responseSuffix); ok {
		sc, err := c.schema(name, st)
		if err != nil {
			return err
		}
		c.op(prefix).response = &sc
	}
	return nil
}

func (c *collector) schema(name string, st *ast.StructType) (Schema, error) {
	sc := Schema{Name: name}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			continue // embedded
		}
		prop := Property{Type: arkType(field.Type)}
		if prop.Type == "" {
			prop.Type, prop.Raw = rawArray(field.Type)
		}
		if prop.Type == "" {
			prop.Type = "any"
		}

		jsonName := ""
		if field.Tag != nil {
			raw, err := strconv.Unquote(field.Tag.Value)
			if err != nil {
				return sc, fmt.Errorf("%s: %w", c.fset.Position(field.Pos()), err)
			}
			tags, err := structtag.Parse(raw)
			if err != nil {
				return sc, fmt.Errorf("%s: %s.%s: %w", c.fset.Position(field.Pos()), name, field.Names[0].Name, err)
			}
			if jt, err := tags.Get("json"); err == nil {
				if jt.Name == "-" && len(jt.Options) == 0 {
					continue
				}
				jsonName = jt.Name
			}
			if at, err := tags.Get("ark"); err == nil {
				prop.Type, prop.Raw = at.Value(), false
				if expr, ok := strings.CutPrefix(prop.Type, schema.RawPrefix); ok {
					prop.Type, prop.Raw = expr, true
				} else if _, err := schema.ParseRule(prop.Type); err != nil {
					c.log.Warn().Str("pos", c.fset.Position(field.Pos()).String()).Err(err).
						Msg("ark expression is not understood by the runtime validator")
				}
			}
		}

		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			p := prop
			p.Name = ident.Name
			if jsonName != "" && len(field.Names) == 1 {
				p.Name = jsonName
			}
			sc.Properties = append(sc.Properties, p)
		}
	}
	return sc, nil
}

func (c *collector) model() *Model {
	m := &Model{DTOs: c.dtos}
	for name, p := range c.ops {
		if !p.hasPath || p.request == nil || p.response == nil {
			c.log.Debug().Str("operation", name).Bool("path", p.hasPath).Bool("request", p.request != nil).
				Bool("response", p.response != nil).Msg("skipping incomplete operation")
			continue
		}
		m.Operations = append(m.Operations, Operation{Name: name, Path: p.path, Request: *p.request, Response: *p.response})
	}
	sort.Slice(m.DTOs, func(i, j int) bool { return m.DTOs[i].Name < m.DTOs[j].Name })
	sort.Slice(m.Operations, func(i, j int) bool { return m.Operations[i].Name < m.Operations[j].Name })
	return m
}

// arkType maps a Go type expression to an arktype keyword. Pointers become optional.
func arkType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		switch t.Name {
		case "string":
			return "string"
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64",
			"float32", "float64", "byte", "rune":
			return "number"
		case "bool":
			return "boolean"
		}
	case *ast.StarExpr:
		if inner := arkType(t.X); inner != "" && inner != "any" {
			return inner + " | undefined"
		}
	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok && t.Len == nil && (ident.Name == "byte" || ident.Name == "uint8") {
			return "string" // base64
		}
		if inner := arkType(t.Elt); inner != "" && !strings.Contains(inner, "|") {
			return inner + "[]"
		}
	}
	return ""
}

// rawArray references the schema of a DTO slice element, e.g. Ding_DTO_Schema.array().
func rawArray(expr ast.Expr) (string, bool) {
	at, ok := expr.(*ast.ArrayType)
	if !ok {
		return "", false
	}
	ident, ok := at.Elt.(*ast.Ident)
	if !ok || !strings.HasSuffix(ident.Name, dtoSuffix) {
		return "", false
	}
	return ident.Name + "_Schema.array()", true
}

// trimSuffix returns the non-empty prefix before suffix.
func trimSuffix(name, suffix string) (string, bool) {
	prefix, ok := strings.CutSuffix(name, suffix)
	return prefix, ok && prefix != ""
}
