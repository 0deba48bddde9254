// Package verificationv1 defines the wire types and gRPC service descriptors for the voter
// verification API. Messages are plain Go structs carried by a JSON codec registered under the
// "json" content-subtype, so clients must dial with grpc.CallContentSubtype(CodecName).
package verificationv1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype for this API ("application/grpc+json").
const CodecName = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec marshals messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (Codec) Name() string { return CodecName }
