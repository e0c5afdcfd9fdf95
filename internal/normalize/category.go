package normalize

import (
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Category is the kind of value as far as normalization is concerned.
type Category int

const (
	// Primitive covers nil, booleans, integers, floats and strings.
	Primitive Category = iota
	// Enum covers protobuf enum members.
	Enum
	// Message covers protobuf messages, generated or dynamic.
	Message
	// Mapping covers Go maps and ordered maps.
	Mapping
	// Sequence covers slices and arrays.
	Sequence
	// Unrecognized is everything else.
	Unrecognized
)

func (c Category) String() string {
	switch c {
	case Primitive:
		return "primitive"
	case Enum:
		return "enum"
	case Message:
		return "message"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	default:
		return "unrecognized"
	}
}

// Classify returns the category of v.
//
// Enum and message checks run before the reflect kind checks, since
// generated enums are named int32 types and must not be treated as numbers.
// Byte slices are Unrecognized so they end up base64 encoded.
func Classify(v any) Category {
	if v == nil {
		return Primitive
	}

	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Primitive
	case protoreflect.Enum:
		return Enum
	case proto.Message:
		return Message
	case *orderedmap.OrderedMap[string, any]:
		return Mapping
	case []byte:
		return Unrecognized
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Primitive
	case reflect.Map:
		return Mapping
	case reflect.Slice, reflect.Array:
		return Sequence
	}

	return Unrecognized
}
