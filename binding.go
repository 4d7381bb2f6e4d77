package httprpc

import (
	"github.com/pkg/errors"

	"github.com/lyralabs/httprpc/wiretype"
)

// bindArguments maps the wire payload onto the method's facial parameter
// names, enforcing required-ness and decoding each value against its
// declared type. Error messages name the offending wire key.
func bindArguments(codec wiretype.Codec, md *MethodDesc, payload map[string]interface{}) (Args, error) {
	args := make(Args, len(md.Params))
	for i := range md.Params {
		p := &md.Params[i]
		wireName := p.wireName()
		data, ok := payload[wireName]
		if !ok {
			return nil, errors.Errorf(
				"An argument named '%s' is missing, it is required.", wireName)
		}
		typ := p.Type.Resolve()
		v, err := codec.Decode(typ, data)
		if err != nil {
			return nil, errors.Errorf(
				"Incorrect type '%s' for '%s'. expected '%s'.",
				wiretype.NameOf(data), wireName, typ)
		}
		args[p.Name] = v
	}

	return args, nil
}

// validateReturn round-trips result through the codec against the declared
// return type and yields the encoded wire value. The round trip trusts the
// codec's encode/decode symmetry: a result that cannot be faithfully
// represented in the declared wire type is rejected.
func validateReturn(codec wiretype.Codec, typ *wiretype.Type, result interface{}) (interface{}, bool) {
	wire, err := codec.Encode(result)
	if err != nil {
		return nil, false
	}
	if typ != nil {
		if _, err := codec.Decode(typ, wire); err != nil {
			return nil, false
		}
	}

	return wire, true
}
