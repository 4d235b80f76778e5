package codec

// Codec serializes call arguments and parses response bodies.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	ContentType() string // Value for the Content-Type request header
}

// Default is the codec used when a transport is not given one.
var Default Codec = &JSONCodec{}
