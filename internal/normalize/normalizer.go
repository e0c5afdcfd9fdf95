package normalize

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/teemow/adsmcp/internal/logging"
)

// Mode selects how protobuf messages are normalized.
type Mode int

const (
	// Deep walks message fields recursively and produces ordered mappings.
	Deep Mode = iota
	// Shallow replaces messages with their text representation.
	Shallow
)

// DefaultMaxDepth bounds recursion into nested containers and messages.
const DefaultMaxDepth = 32

func (m Mode) String() string {
	if m == Shallow {
		return "shallow"
	}
	return "deep"
}

// ParseMode parses "deep" or "shallow". The empty string selects Deep.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deep":
		return Deep, nil
	case "shallow":
		return Shallow, nil
	default:
		return Deep, fmt.Errorf("invalid normalize mode %q, must be one of: deep, shallow", s)
	}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMode sets the message strictness variant.
func WithMode(mode Mode) Option {
	return func(n *Normalizer) {
		n.mode = mode
	}
}

// WithLogger sets the logger used for warnings and fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMaxDepth sets the recursion limit. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(n *Normalizer) {
		if depth > 0 {
			n.maxDepth = depth
		}
	}
}

// Normalizer converts arbitrary values into JSON-safe values.
type Normalizer struct {
	mode     Mode
	logger   *slog.Logger
	maxDepth int
}

// New creates a Normalizer. Without options it runs in Deep mode and logs
// to slog.Default().
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		mode:     Deep,
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Mode returns the configured strictness variant.
func (n *Normalizer) Mode() Mode {
	return n.mode
}

// Value returns the normalized form of v. It never panics: a fault while
// converting is logged as a warning and the value's string representation
// is returned instead.
func (n *Normalizer) Value(v any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("value normalization failed, using string representation",
				logging.ValueType(v),
				slog.Any("panic", r),
			)
			out = n.safeString(v)
		}
	}()
	return n.value(v, 0)
}

func (n *Normalizer) value(v any, depth int) any {
	if depth > n.maxDepth {
		n.logger.Warn("maximum normalization depth exceeded", logging.ValueType(v), slog.Int("max_depth", n.maxDepth))
		return fmt.Sprintf("<%T: max depth exceeded>", v)
	}

	switch Classify(v) {
	case Primitive:
		return v
	case Enum:
		return enumName(v.(protoreflect.Enum))
	case Message:
		m := v.(proto.Message)
		pm := m.ProtoReflect()
		if !pm.IsValid() {
			return nil
		}
		if n.mode == Shallow {
			return n.safeString(m)
		}
		return n.message(pm, depth)
	case Mapping:
		return n.mapping(v, depth)
	case Sequence:
		return n.sequence(v, depth)
	default:
		n.logger.Debug("unrecognized value type, using string representation", logging.ValueType(v))
		return n.safeString(v)
	}
}

// enumName returns the symbolic name of e, or its number when the number
// is not declared in the enum.
func enumName(e protoreflect.Enum) any {
	if ev := e.Descriptor().Values().ByNumber(e.Number()); ev != nil {
		return string(ev.Name())
	}
	return int32(e.Number())
}

func (n *Normalizer) message(m protoreflect.Message, depth int) any {
	if !m.IsValid() {
		return nil
	}

	desc := m.Descriptor()
	if desc.FullName().Parent() == "google.protobuf" {
		return n.wellKnown(m, depth)
	}

	out := orderedmap.New[string, any]()
	fields := desc.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if !m.Has(fd) {
			continue
		}
		out.Set(string(fd.Name()), n.value(fieldValue(fd, m.Get(fd)), depth+1))
	}
	return out
}

// wellKnown converts google.protobuf.* messages through their canonical
// JSON mapping.
func (n *Normalizer) wellKnown(m protoreflect.Message, depth int) any {
	switch x := m.Interface().(type) {
	case *structpb.Struct:
		return n.value(x.AsMap(), depth+1)
	case *structpb.ListValue:
		return n.value(x.AsSlice(), depth+1)
	case *structpb.Value:
		return n.value(x.AsInterface(), depth+1)
	}

	b, err := protojson.Marshal(m.Interface())
	if err != nil {
		n.logger.Warn("failed to marshal well-known type", logging.ValueType(m.Interface()), logging.Err(err))
		return n.safeString(m.Interface())
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return string(b)
	}
	return n.value(decoded, depth+1)
}

func (n *Normalizer) mapping(v any, depth int) any {
	out := orderedmap.New[string, any]()

	if om, ok := v.(*orderedmap.OrderedMap[string, any]); ok {
		if om == nil {
			return nil
		}
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, n.value(pair.Value, depth+1))
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return nil
	}

	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: n.mapKey(iter.Key()), value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	for _, e := range entries {
		out.Set(e.key, n.value(e.value.Interface(), depth+1))
	}
	return out
}

// mapKey renders a non-string key through the same fallback as values.
func (n *Normalizer) mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return n.safeString(k.Interface())
}

func (n *Normalizer) sequence(v any, depth int) any {
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = n.value(rv.Index(i).Interface(), depth+1)
	}
	return out
}

// safeString returns the default string representation of v, or a
// placeholder when producing it panics.
func (n *Normalizer) safeString(v any) string {
	s, err := defaultString(v)
	if err != nil {
		n.logger.Warn("string conversion failed", logging.ValueType(v), logging.Err(err))
		return fmt.Sprintf("<unprintable %T>", v)
	}
	return s
}

func defaultString(v any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("string conversion panicked: %v", r)
		}
	}()

	switch x := v.(type) {
	case nil:
		return "<nil>", nil
	case string:
		return x, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(x), nil
	case proto.Message:
		return prototext.MarshalOptions{}.Format(x), nil
	case protoreflect.Enum:
		if ev := x.Descriptor().Values().ByNumber(x.Number()); ev != nil {
			return string(ev.Name()), nil
		}
		return fmt.Sprint(int32(x.Number())), nil
	case error:
		return x.Error(), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return fmt.Sprint(v), nil
}

// fieldValue converts a protobuf field value into a plain Go value the
// normalizer understands. Enum numbers are paired with their descriptor so
// they keep their names.
func fieldValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		list := v.List()
		out := make([]any, list.Len())
		for i := range out {
			out[i] = singularValue(fd, list.Get(i))
		}
		return out
	case fd.IsMap():
		m := v.Map()
		out := make(map[string]any, m.Len())
		m.Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()] = singularValue(fd.MapValue(), mv)
			return true
		})
		return out
	default:
		return singularValue(fd, v)
	}
}

func singularValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return dynamicpb.NewEnumType(fd.Enum()).New(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	default:
		return v.Interface()
	}
}
