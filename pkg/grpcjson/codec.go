// Package grpcjson registers a JSON codec with grpc-go so services can be
// served without generated protobuf messages. Clients select it with
// grpc.CallContentSubtype(grpcjson.Name).
package grpcjson

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const Name = "json"

type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return Name }

func init() {
	encoding.RegisterCodec(Codec{})
}
