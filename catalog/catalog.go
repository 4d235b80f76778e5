// Package catalog is the registry of remote operations: for every operation it holds the
// wire path, the Go request/response types and the shapes derived from them.
package catalog

import (
	"reflect"
	"sort"
	"strings"

	"github.com/kuechlerm/arkstruct/schema"
)

// Operation describes one remote procedure.
type Operation struct {
	Name         string // "eins"
	Method       string // Go method name, "Eins"
	Path         string // "/eins"
	Request      *schema.Shape
	Response     *schema.Shape
	RequestType  reflect.Type
	ResponseType reflect.Type
}

// DingShape is the shape of DingDTO.
var DingShape = schema.MustOf[DingDTO]()

var (
	AName  = define[ANameRequest, ANameResponse]("a_name", "AName", ANamePath)
	Eins   = define[EinsRequest, EinsResponse]("eins", "Eins", EinsPath)
	Listen = define[ListenRequest, ListenResponse]("listen", "Listen", ListenPath)
	Zwei   = define[ZweiRequest, ZweiResponse]("zwei", "Zwei", ZweiPath)
)

var operations = []Operation{AName, Eins, Listen, Zwei}

func init() {
	sort.Slice(operations, func(i, j int) bool {
		return operations[i].Name < operations[j].Name
	})
	seen := make(map[string]string, len(operations))
	for _, op := range operations {
		if other, ok := seen[op.Path]; ok {
			panic("catalog: path " + op.Path + " used by " + other + " and " + op.Name)
		}
		seen[op.Path] = op.Name
	}
}

func define[Req, Resp any](name, method, path string) Operation {
	return Operation{
		Name:         name,
		Method:       method,
		Path:         path,
		Request:      schema.MustOf[Req](),
		Response:     schema.MustOf[Resp](),
		RequestType:  reflect.TypeOf((*Req)(nil)).Elem(),
		ResponseType: reflect.TypeOf((*Resp)(nil)).Elem(),
	}
}

// Operations returns every operation, sorted by name.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// Lookup finds an operation by name ("a_name"), Go method name ("AName") or path
// ("/a_name"). Names and method names match case-insensitively.
func Lookup(key string) (Operation, bool) {
	for _, op := range operations {
		if key == op.Path || strings.EqualFold(key, op.Name) || strings.EqualFold(key, op.Method) {
			return op, true
		}
	}
	return Operation{}, false
}
