package bipf

import (
	"encoding/base64"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStructured converts v into JSON-compatible Go values: nil, int64, bool,
// string, base64 text for byte strings and []any for lists.
func ToStructured(v Value) any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindBool:
		return v.i != 0
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.b)
	case KindList:
		out := make([]any, len(v.l))
		for i, e := range v.l {
			out[i] = ToStructured(e)
		}
		return out
	default:
		return nil
	}
}

// ToProto converts v into a protobuf Value for the gRPC transport. Integers
// become numbers, so magnitudes above 2^53 lose precision as they do in JSON.
func ToProto(v Value) (*structpb.Value, error) {
	return structpb.NewValue(ToStructured(v))
}
