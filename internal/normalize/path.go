package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrFieldNotFound is returned when a path segment names no field.
	ErrFieldNotFound = errors.New("field not found")

	// ErrNotTraversable is returned when a path descends into a value that
	// has no named fields.
	ErrNotTraversable = errors.New("value has no fields")

	// ErrEmptyPath is returned for an empty path or an empty segment.
	ErrEmptyPath = errors.New("empty attribute path")
)

// PathError describes a failure to resolve a dotted attribute path.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: segment %q: %v", e.Path, e.Segment, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Resolve walks a dotted attribute path such as "campaign.status" through
// row. Protobuf messages are matched by field name or JSON name, structpb
// structs by key (falling back to the lowerCamel form of the segment) and
// maps with string keys by key.
//
// Enum fields resolve to protoreflect.Enum values and message fields to
// proto.Message values, so the result can be handed to Normalizer.Value.
func Resolve(row any, path string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PathError{Path: path, Err: fmt.Errorf("resolution panicked: %v", r)}
		}
	}()

	if path == "" {
		return nil, &PathError{Path: path, Err: ErrEmptyPath}
	}

	current := row
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, &PathError{Path: path, Err: ErrEmptyPath}
		}
		next, err := lookup(current, segment)
		if err != nil {
			return nil, &PathError{Path: path, Segment: segment, Err: err}
		}
		current = next
	}
	return current, nil
}

func lookup(current any, name string) (any, error) {
	switch x := current.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotTraversable)
	case *structpb.Struct:
		return structField(x, name)
	case *structpb.Value:
		if s := x.GetStructValue(); s != nil {
			return structField(s, name)
		}
		return nil, fmt.Errorf("%w: %T", ErrNotTraversable, x.AsInterface())
	case proto.Message:
		return messageField(x.ProtoReflect(), name)
	case *orderedmap.OrderedMap[string, any]:
		if v, ok := x.Get(name); ok {
			return v, nil
		}
		return nil, ErrFieldNotFound
	case map[string]any:
		if v, ok := x[name]; ok {
			return v, nil
		}
		return nil, ErrFieldNotFound
	}

	rv := reflect.ValueOf(current)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, ErrFieldNotFound
		}
		return v.Interface(), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrNotTraversable, current)
}

func messageField(m protoreflect.Message, name string) (any, error) {
	desc := m.Descriptor()
	fields := desc.Fields()

	fd := fields.ByName(protoreflect.Name(name))
	if fd == nil {
		fd = fields.ByJSONName(name)
	}
	if fd == nil {
		return nil, fmt.Errorf("%w in %s", ErrFieldNotFound, desc.FullName())
	}
	return fieldValue(fd, m.Get(fd)), nil
}

func structField(s *structpb.Struct, name string) (any, error) {
	fields := s.GetFields()
	v, ok := fields[name]
	if !ok {
		v, ok = fields[lowerCamel(name)]
	}
	if !ok {
		return nil, ErrFieldNotFound
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_StructValue:
		return kind.StructValue, nil
	case *structpb.Value_ListValue:
		return kind.ListValue.AsSlice(), nil
	default:
		return v.AsInterface(), nil
	}
}

// lowerCamel converts snake_case GAQL segments to the lowerCamel keys used
// by the REST JSON encoding ("ad_group" -> "adGroup").
func lowerCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
