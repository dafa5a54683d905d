package dsl

import (
	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/codec"
)

// Date transports time.Time values as RFC3339 strings (UTC, trailing zeros
// trimmed). Deserialized values are time.Time.
func Date(args ...*serializr.AdditionalArgs) serializr.PropSchema {
	return FromCodec(codec.TimeRFC3339(), args...)
}
