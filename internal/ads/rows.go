package ads

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// DecodeRows decodes REST search results into protobuf messages.
//
// The decoding is chosen once per response so that a field has the same
// type in every row. When the row schema covers every path and every row
// decodes strictly, the rows are dynamic GoogleAdsRow messages: int64
// fields become numbers and enums keep their names. Otherwise every row is
// decoded into a google.protobuf.Struct.
//
// The REST encoding omits fields holding their default value and encodes
// int64 as strings. Struct rows get an explicit null for every requested
// path that is missing, and int64 fields the schema knows are turned back
// into numbers.
func DecodeRows(results []json.RawMessage, paths []string) ([]proto.Message, error) {
	md, err := RowDescriptor()
	if err != nil {
		return nil, err
	}

	if Covers(md, paths) {
		if rows, ok := decodeTyped(md, results); ok {
			return rows, nil
		}
	}

	intPaths := int64Paths(md, paths)
	rows := make([]proto.Message, 0, len(results))
	for i, raw := range results {
		st := &structpb.Struct{}
		if err := protojson.Unmarshal(raw, st); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", i, err)
		}
		fillMissing(st, paths)
		for _, path := range intPaths {
			restoreInt64(st, path)
		}
		rows = append(rows, st)
	}
	return rows, nil
}

// decodeTyped decodes every row as a GoogleAdsRow, or reports false as soon
// as one row does not fit the schema.
func decodeTyped(md protoreflect.MessageDescriptor, results []json.RawMessage) ([]proto.Message, bool) {
	rows := make([]proto.Message, 0, len(results))
	for _, raw := range results {
		msg := dynamicpb.NewMessage(md)
		if err := protojson.Unmarshal(raw, msg); err != nil {
			return nil, false
		}
		rows = append(rows, msg)
	}
	return rows, true
}

// int64Paths returns the paths the schema knows as 64-bit integers.
func int64Paths(md protoreflect.MessageDescriptor, paths []string) []string {
	var out []string
	for _, path := range paths {
		fd := fieldAt(md, path)
		if fd == nil || fd.IsList() || fd.IsMap() {
			continue
		}
		switch fd.Kind() {
		case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
			out = append(out, path)
		}
	}
	return out
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// restoreInt64 replaces the string at path with a number when it is an
// integer a JSON number can carry exactly.
func restoreInt64(st *structpb.Struct, path string) {
	segments := strings.Split(path, ".")
	current := st
	for i, segment := range segments {
		v, ok := current.Fields[segment]
		key := segment
		if !ok {
			key = jsonName(segment)
			v, ok = current.Fields[key]
		}
		if !ok {
			return
		}
		if i < len(segments)-1 {
			if current = v.GetStructValue(); current == nil {
				return
			}
			continue
		}

		sv, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return
		}
		n, err := strconv.ParseInt(sv.StringValue, 10, 64)
		if err != nil || n > maxExactInt || n < -maxExactInt {
			return
		}
		current.Fields[key] = structpb.NewNumberValue(float64(n))
	}
}

// fillMissing sets a null value for each path absent from st. Paths that
// run into a non-struct value are left alone.
func fillMissing(st *structpb.Struct, paths []string) {
	for _, path := range paths {
		segments := strings.Split(path, ".")
		current := st
		for i, segment := range segments {
			if current.Fields == nil {
				current.Fields = map[string]*structpb.Value{}
			}
			key := segment
			v, ok := current.Fields[key]
			if !ok {
				key = jsonName(segment)
				v, ok = current.Fields[key]
			}

			last := i == len(segments)-1
			if !ok {
				if last {
					current.Fields[key] = structpb.NewNullValue()
					break
				}
				next := &structpb.Struct{Fields: map[string]*structpb.Value{}}
				current.Fields[key] = structpb.NewStructValue(next)
				current = next
				continue
			}
			if last {
				break
			}
			next := v.GetStructValue()
			if next == nil {
				break
			}
			current = next
		}
	}
}

// jsonName converts a snake_case segment to the lowerCamel key used by the
// REST encoding.
func jsonName(segment string) string {
	parts := strings.Split(segment, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
