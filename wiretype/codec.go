package wiretype

import (
	"math"

	"github.com/pkg/errors"
)

// Codec translates between decoded-JSON wire values and their typed forms.
// Decode fails on structural mismatch; Encode is total for every value a
// method can legally return.
type Codec interface {
	Decode(t *Type, wire interface{}) (interface{}, error)
	Encode(v interface{}) (interface{}, error)
}

// Marshaler lets richly-typed values provide their own wire form.
type Marshaler interface {
	MarshalWire() (interface{}, error)
}

// JSONCodec validates and coerces decoded-JSON value trees (the result of
// unmarshalling into interface{}).
type JSONCodec struct{}

var _ Codec = JSONCodec{}

// Decode checks wire against t and returns the coerced value. Integral
// float64s coerce to int64 for Int; everything else must match its kind
// exactly.
func (c JSONCodec) Decode(t *Type, wire interface{}) (interface{}, error) {
	if t == nil || t.Kind == Any {
		return wire, nil
	}
	switch t.Kind {
	case Bool:
		if b, ok := wire.(bool); ok {
			return b, nil
		}
	case Int:
		switch n := wire.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		}
	case Float:
		switch n := wire.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case Text:
		if s, ok := wire.(string); ok {
			return s, nil
		}
	case Array:
		if items, ok := wire.([]interface{}); ok {
			out := make([]interface{}, len(items))
			for i, item := range items {
				v, err := c.Decode(t.Elem, item)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		}
	case Map:
		if m, ok := wire.(map[string]interface{}); ok {
			out := make(map[string]interface{}, len(m))
			for k, item := range m {
				v, err := c.Decode(t.Elem, item)
				if err != nil {
					return nil, err
				}
				out[k] = v
			}
			return out, nil
		}
	case Object:
		if m, ok := wire.(map[string]interface{}); ok {
			return c.decodeObject(t, m)
		}
	case Union:
		if m, ok := wire.(map[string]interface{}); ok {
			return c.decodeUnion(t, m)
		}
	}
	return nil, errors.Errorf("cannot decode %s into %s", NameOf(wire), t)
}

func (c JSONCodec) decodeObject(t *Type, m map[string]interface{}) (interface{}, error) {
	out := make(map[string]interface{}, len(t.Fields))
	for name, f := range t.Fields {
		raw, present := m[name]
		if !present || raw == nil {
			if f.Optional {
				continue
			}
			return nil, errors.Errorf("missing field '%s' of %s", name, t)
		}
		v, err := c.Decode(f.Type, raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (c JSONCodec) decodeUnion(t *Type, m map[string]interface{}) (interface{}, error) {
	tag, ok := m["_tag"].(string)
	if !ok {
		return nil, errors.Errorf("missing tag of %s", t)
	}
	variant, ok := t.Variants[tag]
	if !ok {
		return nil, errors.Errorf("unknown tag '%s' of %s", tag, t)
	}
	decoded, err := c.Decode(variant, m)
	if err != nil {
		return nil, err
	}
	out := decoded.(map[string]interface{})
	out["_tag"] = tag
	if t.Name != "" {
		out["_type"] = t.Name
	}
	return out, nil
}

// Encode lowers v to a decoded-JSON tree. Scalars, slices and string-keyed
// maps pass through; anything else must implement Marshaler.
func (c JSONCodec) Encode(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Marshaler:
		wire, err := val.MarshalWire()
		if err != nil {
			return nil, err
		}
		return c.Encode(wire)
	case bool, string, int64, float64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float32:
		return float64(val), nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			enc, err := c.Encode(item)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			enc, err := c.Encode(item)
			if err != nil {
				return nil, err
			}
			out[k] = enc
		}
		return out, nil
	case map[string]string:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out, nil
	}
	return nil, errors.Errorf("cannot encode value of type %T", v)
}
