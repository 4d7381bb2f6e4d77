package httprpc

import (
	"context"

	"github.com/lyralabs/httprpc/wiretype"
)

// Args holds a method's bound arguments, keyed by facial parameter name and
// ready for direct invocation.
type Args map[string]interface{}

// MethodHandler invokes the service implementation for one method. The
// returned value must be encodable by the server's codec; an error outside
// the method's declared error union is treated as a service bug.
type MethodHandler func(impl interface{}, ctx context.Context, args Args) (interface{}, error)

// ParamDesc describes a single method parameter.
type ParamDesc struct {
	// Name is the facial name, as it appears in the method signature.
	Name string
	// WireName is the key carrying the argument in payloads. Empty means
	// the facial name is used on the wire too.
	WireName string
	// Type is the parameter's declared wire type.
	Type wiretype.Ref
}

func (p *ParamDesc) wireName() string {
	if p.WireName != "" {
		return p.WireName
	}
	return p.Name
}

// HTTPRule binds a method to a RESTful URI template. Path variables must
// cover every wire parameter name of the method.
type HTTPRule struct {
	// Path is a URI template, e.g. "/users/{id}".
	Path string
	// Method is the HTTP verb the rule answers to.
	Method string
}

// MethodDesc represents an RPC service's method specification.
type MethodDesc struct {
	// MethodName is the facial name of the method.
	MethodName string
	// WireName is the name clients send in `?method=`. Empty means the
	// facial name is used on the wire too.
	WireName string

	Params  []ParamDesc
	Returns wiretype.Ref

	// Errors is the method's declared error union. Nil means the method
	// declares no domain errors, and any error its handler returns is
	// treated as unexpected.
	Errors *wiretype.Type

	Handler MethodHandler

	// HTTP optionally routes the method through a URI template in addition
	// to the classic call path.
	HTTP *HTTPRule
}

func (md *MethodDesc) wireName() string {
	if md.WireName != "" {
		return md.WireName
	}
	return md.MethodName
}

// ServiceDesc represents an RPC service's specification. It is produced by
// generated code (or written by hand) and registered once with a Server.
type ServiceDesc struct {
	ServiceName string

	// HandlerType is a pointer to the interface the implementation must
	// satisfy. Used only for documentation and compile-time assertions in
	// generated code.
	HandlerType interface{}

	Methods []MethodDesc
}

// serviceInfo wraps registration state about a service. It is constructed
// from a ServiceDesc at registration and read-only afterwards.
type serviceInfo struct {
	// Contains the implementation for the methods in this service.
	serviceImpl interface{}
	// methods is keyed by facial name, wireNames maps wire name to facial.
	methods   map[string]*MethodDesc
	wireNames map[string]string
}

// DomainError is an application error declared in a method's error union.
// A handler returns one to deliver a typed failure to the caller: the
// dispatcher serializes ErrorValue at HTTP 400 in the error's own shape
// instead of the generic protocol envelope.
type DomainError interface {
	error
	ErrorValue() interface{}
}
