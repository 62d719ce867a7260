package store

import jsoniter "github.com/json-iterator/go"

// Codec encodes stored values.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// JSON is the default codec.
var JSON Codec = jsonCodec{}
