// ABOUTME: JSON codec registered with gRPC under the "json" content-subtype
// ABOUTME: Protobuf messages go through protojson, plain structs through encoding/json

package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content-subtype served and requested by this package.
const CodecName = "json"

// Codec marshals gRPC messages as JSON.
type Codec struct{}

func init() {
	encoding.RegisterCodec(Codec{})
}

// Name implements encoding.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		if len(data) == 0 {
			return nil
		}
		return protojson.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
