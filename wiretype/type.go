// Package wiretype describes the wire shapes of RPC values and provides the
// codec that translates between decoded-JSON trees and their typed forms.
package wiretype

import (
	"fmt"
	"math"
	"strings"
)

// Kind enumerates the shapes a wire value can take.
type Kind int

const (
	Any Kind = iota
	Bool
	Int
	Float
	Text
	Array
	Map
	Object
	Union
)

// Field describes one member of an Object (or of a Union variant's payload).
type Field struct {
	Type *Type
	// Optional fields may be absent from the payload or carry null.
	Optional bool
}

// Type is a wire type tag. Exactly the fields relevant to Kind are set:
// Elem for Array and Map, Fields for Object, Variants for Union.
type Type struct {
	Kind     Kind
	Elem     *Type
	Fields   map[string]Field
	Variants map[string]*Type

	// Name overrides the generic kind name in error messages. For unions it
	// is also emitted as the value's "_type" discriminator.
	Name string
}

func BoolType() *Type  { return &Type{Kind: Bool} }
func IntType() *Type   { return &Type{Kind: Int} }
func FloatType() *Type { return &Type{Kind: Float} }
func TextType() *Type  { return &Type{Kind: Text} }
func AnyType() *Type   { return &Type{Kind: Any} }

// ArrayOf returns the type of arrays whose elements are elem.
func ArrayOf(elem *Type) *Type { return &Type{Kind: Array, Elem: elem} }

// MapOf returns the type of string-keyed maps whose values are value.
func MapOf(value *Type) *Type { return &Type{Kind: Map, Elem: value} }

// ObjectOf returns a record type with the given named fields.
func ObjectOf(name string, fields map[string]Field) *Type {
	return &Type{Kind: Object, Name: name, Fields: fields}
}

// UnionOf returns a tagged union type. Values carry their variant in a
// "_tag" member alongside that variant's fields.
func UnionOf(name string, variants map[string]*Type) *Type {
	return &Type{Kind: Union, Name: name, Variants: variants}
}

func (t *Type) String() string {
	if t == nil {
		return "any"
	}
	if t.Name != "" {
		return t.Name
	}
	switch t.Kind {
	case Any:
		return "any"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "float"
	case Text:
		return "text"
	case Array:
		return "[" + t.Elem.String() + "]"
	case Map:
		return "{text: " + t.Elem.String() + "}"
	case Object:
		return "record"
	case Union:
		return "union"
	}
	return "unknown"
}

// Ref is a reference to a Type, resolved either up front or lazily. Later
// metadata schema versions emit type tags behind a thunk so that mutually
// recursive definitions can be constructed; Resolve hides the difference
// from consumers.
type Ref struct {
	direct *Type
	lazy   func() *Type
}

// Direct wraps an already-resolved type.
func Direct(t *Type) Ref { return Ref{direct: t} }

// Lazy wraps a thunk producing the type on first use.
func Lazy(fn func() *Type) Ref { return Ref{lazy: fn} }

// Resolve returns the referenced type. A zero Ref resolves to nil, which
// consumers treat as "any".
func (r Ref) Resolve() *Type {
	if r.lazy != nil {
		return r.lazy()
	}
	return r.direct
}

// NameOf names the wire shape of a decoded JSON value for error messages.
func NameOf(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "text"
	case int, int32, int64:
		return "integer"
	case float64:
		if n == math.Trunc(n) {
			return "integer"
		}
		return "float"
	case float32:
		if float64(n) == math.Trunc(float64(n)) {
			return "integer"
		}
		return "float"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	}
}
