package server

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kuechlerm/arkstruct/catalog"
)

type methodType struct {
	method    reflect.Method
	op        catalog.Operation
	ArgType   reflect.Type
	ReplyType reflect.Type
}

type service struct {
	name   string
	rcvr   reflect.Value
	typ    reflect.Type
	method map[string]*methodType // keyed by operation path
}

// NewService 创建 service 并扫描所有合法方法
func NewService(name string, rcvr any) (*service, error) {
	// 1. 用 reflect.TypeOf / ValueOf 获取类型和值
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("rpc: rcvr must be a pointer, got %v", typ)
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rpc: rcvr must point to a struct, got %s", typ.Elem().Kind())
	}
	// 2. 默认用类型名作为 service name
	if name == "" {
		name = typ.Elem().Name()
	}
	srv := &service{
		name:   name,
		rcvr:   reflect.ValueOf(rcvr),
		typ:    typ,
		method: make(map[string]*methodType),
	}
	// 3. 调用 RegisterMethods() 扫描方法
	if err := srv.RegisterMethods(); err != nil {
		return nil, err
	}
	if len(srv.method) == 0 {
		return nil, fmt.Errorf("rpc: %s has no methods implementing a catalog operation", name)
	}
	return srv, nil
}

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// RegisterMethods 扫描 struct 的导出方法，过滤出符合 RPC 签名的
//
// A method serves the catalog operation of the same name and must look like
//
//	func (s *T) Eins(ctx context.Context, args *catalog.EinsRequest, reply *catalog.EinsResponse) error
//
// Methods that are not named after an operation are ignored.
func (s *service) RegisterMethods() error {
	for i := 0; i < s.typ.NumMethod(); i++ {
		method := s.typ.Method(i)
		op, ok := catalog.Lookup(method.Name)
		if !ok {
			continue
		}
		mt := method.Type
		//   - 4 个入参: (receiver, ctx, *Args, *Reply)
		if mt.NumIn() != 4 || mt.NumOut() != 1 || mt.Out(0) != errorType || mt.In(1) != contextType ||
			mt.In(2).Kind() != reflect.Ptr || mt.In(3).Kind() != reflect.Ptr {
			return fmt.Errorf("rpc: %s.%s has the wrong signature for operation %s", s.name, method.Name, op.Path)
		}
		if mt.In(2).Elem() != op.RequestType || mt.In(3).Elem() != op.ResponseType {
			return fmt.Errorf("rpc: %s.%s must take *%s and *%s", s.name, method.Name, op.RequestType, op.ResponseType)
		}

		s.method[op.Path] = &methodType{
			method:    method,
			op:        op,
			ArgType:   op.RequestType,
			ReplyType: op.ResponseType,
		}
	}
	return nil
}

// Call 通过反射调用方法. A panic in the method is returned as an error.
func (s *service) Call(ctx context.Context, mType *methodType, argv, replyv reflect.Value) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s: %v", mType.op.Path, p)
		}
	}()
	args := [4]reflect.Value{s.rcvr, reflect.ValueOf(ctx), argv, replyv}
	results := mType.method.Func.Call(args[:])
	if !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}
