package ads

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// schemaPackage is the protobuf package of the dynamic row schema.
const schemaPackage = "adsmcp.googleads"

type enumSpec struct {
	name   string // e.g. "CampaignStatus", wrapped in "CampaignStatusEnum"
	values []string
	// numbers overrides the default numbering (index in values) when set.
	numbers []int32
}

type fieldSpec struct {
	name     string
	number   int32
	kind     descriptorpb.FieldDescriptorProto_Type
	typeName string // enum or message name, without package
}

type messageSpec struct {
	name   string
	fields []fieldSpec
}

const (
	tString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	tInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	tInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	tDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	tBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	tEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
	tMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

// Enum values follow the Google Ads API numbering: UNSPECIFIED = 0,
// UNKNOWN = 1, then the real values.
var rowEnums = []enumSpec{
	{name: "CustomerStatus", values: []string{"UNSPECIFIED", "UNKNOWN", "ENABLED", "CANCELED", "SUSPENDED", "CLOSED"}},
	{name: "CampaignStatus", values: []string{"UNSPECIFIED", "UNKNOWN", "ENABLED", "PAUSED", "REMOVED"}},
	{name: "AdGroupStatus", values: []string{"UNSPECIFIED", "UNKNOWN", "ENABLED", "PAUSED", "REMOVED"}},
	{name: "BudgetStatus", values: []string{"UNSPECIFIED", "UNKNOWN", "ENABLED", "REMOVED"}},
	{name: "BudgetDeliveryMethod", values: []string{"UNSPECIFIED", "UNKNOWN", "STANDARD", "ACCELERATED"}},
	{
		name: "AdvertisingChannelType",
		values: []string{
			"UNSPECIFIED", "UNKNOWN", "SEARCH", "DISPLAY", "SHOPPING", "HOTEL", "VIDEO",
			"MULTI_CHANNEL", "LOCAL", "SMART", "PERFORMANCE_MAX", "LOCAL_SERVICES", "TRAVEL", "DEMAND_GEN",
		},
		numbers: []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 14},
	},
	{
		name: "AdGroupType",
		values: []string{
			"UNSPECIFIED", "UNKNOWN", "SEARCH_STANDARD", "DISPLAY_STANDARD", "SHOPPING_PRODUCT_ADS",
			"HOTEL_ADS", "SHOPPING_SMART_ADS", "VIDEO_BUMPER", "VIDEO_TRUE_VIEW_IN_STREAM",
			"VIDEO_TRUE_VIEW_IN_DISPLAY", "VIDEO_NON_SKIPPABLE_IN_STREAM", "SEARCH_DYNAMIC_ADS",
		},
		numbers: []int32{0, 1, 2, 3, 4, 6, 7, 8, 9, 10, 11, 13},
	},
	{
		name:    "Device",
		values:  []string{"UNSPECIFIED", "UNKNOWN", "MOBILE", "TABLET", "DESKTOP", "OTHER", "CONNECTED_TV"},
		numbers: []int32{0, 1, 2, 3, 4, 5, 6},
	},
	{
		name: "DayOfWeek",
		values: []string{
			"UNSPECIFIED", "UNKNOWN", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY",
		},
	},
}

// rowResources are the messages reachable from GoogleAdsRow. Field numbers
// are local to this schema; only names matter for the JSON encoding.
var rowResources = []messageSpec{
	{name: "Customer", fields: []fieldSpec{
		{"resource_name", 1, tString, ""},
		{"id", 2, tInt64, ""},
		{"descriptive_name", 3, tString, ""},
		{"currency_code", 4, tString, ""},
		{"time_zone", 5, tString, ""},
		{"status", 6, tEnum, "CustomerStatus"},
		{"manager", 7, tBool, ""},
		{"test_account", 8, tBool, ""},
		{"auto_tagging_enabled", 9, tBool, ""},
	}},
	{name: "Campaign", fields: []fieldSpec{
		{"resource_name", 1, tString, ""},
		{"id", 2, tInt64, ""},
		{"name", 3, tString, ""},
		{"status", 4, tEnum, "CampaignStatus"},
		{"advertising_channel_type", 5, tEnum, "AdvertisingChannelType"},
		{"campaign_budget", 6, tString, ""},
		{"start_date", 7, tString, ""},
		{"end_date", 8, tString, ""},
	}},
	{name: "AdGroup", fields: []fieldSpec{
		{"resource_name", 1, tString, ""},
		{"id", 2, tInt64, ""},
		{"name", 3, tString, ""},
		{"status", 4, tEnum, "AdGroupStatus"},
		{"type", 5, tEnum, "AdGroupType"},
		{"campaign", 6, tString, ""},
		{"cpc_bid_micros", 7, tInt64, ""},
	}},
	{name: "CampaignBudget", fields: []fieldSpec{
		{"resource_name", 1, tString, ""},
		{"id", 2, tInt64, ""},
		{"name", 3, tString, ""},
		{"amount_micros", 4, tInt64, ""},
		{"status", 5, tEnum, "BudgetStatus"},
		{"delivery_method", 6, tEnum, "BudgetDeliveryMethod"},
		{"explicitly_shared", 7, tBool, ""},
	}},
	{name: "Metrics", fields: []fieldSpec{
		{"clicks", 1, tInt64, ""},
		{"impressions", 2, tInt64, ""},
		{"cost_micros", 3, tInt64, ""},
		{"conversions", 4, tDouble, ""},
		{"conversions_value", 5, tDouble, ""},
		{"all_conversions", 6, tDouble, ""},
		{"ctr", 7, tDouble, ""},
		{"average_cpc", 8, tDouble, ""},
		{"average_cpm", 9, tDouble, ""},
		{"average_cost", 10, tDouble, ""},
		{"interactions", 11, tInt64, ""},
		{"interaction_rate", 12, tDouble, ""},
		{"cost_per_conversion", 13, tDouble, ""},
	}},
	{name: "Segments", fields: []fieldSpec{
		{"date", 1, tString, ""},
		{"week", 2, tString, ""},
		{"month", 3, tString, ""},
		{"quarter", 4, tString, ""},
		{"year", 5, tInt32, ""},
		{"hour", 6, tInt32, ""},
		{"day_of_week", 7, tEnum, "DayOfWeek"},
		{"device", 8, tEnum, "Device"},
	}},
}

// GoogleAdsRow fields, numbered like the Ads API.
var rowFields = []fieldSpec{
	{"customer", 1, tMessage, "Customer"},
	{"campaign", 2, tMessage, "Campaign"},
	{"ad_group", 3, tMessage, "AdGroup"},
	{"metrics", 4, tMessage, "Metrics"},
	{"campaign_budget", 19, tMessage, "CampaignBudget"},
	{"segments", 102, tMessage, "Segments"},
}

var rowDescriptor = sync.OnceValues(buildRowDescriptor)

// RowDescriptor returns the descriptor of the dynamic GoogleAdsRow message.
// Enums are nested in <Name>Enum wrapper messages, as in the Ads API, so
// value names such as ENABLED do not collide.
func RowDescriptor() (protoreflect.MessageDescriptor, error) {
	return rowDescriptor()
}

func buildRowDescriptor() (protoreflect.MessageDescriptor, error) {
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("adsmcp/googleads_row.proto"),
		Package: proto.String(schemaPackage),
		Syntax:  proto.String("proto3"),
	}

	for _, e := range rowEnums {
		file.MessageType = append(file.MessageType, enumWrapper(e))
	}
	for _, m := range rowResources {
		file.MessageType = append(file.MessageType, messageProto(m.name, m.fields))
	}
	file.MessageType = append(file.MessageType, messageProto("GoogleAdsRow", rowFields))

	fd, err := protodesc.NewFile(file, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build row schema: %w", err)
	}
	md := fd.Messages().ByName("GoogleAdsRow")
	if md == nil {
		return nil, fmt.Errorf("row schema has no GoogleAdsRow message")
	}
	return md, nil
}

func enumWrapper(e enumSpec) *descriptorpb.DescriptorProto {
	values := make([]*descriptorpb.EnumValueDescriptorProto, len(e.values))
	for i, name := range e.values {
		number := int32(i)
		if e.numbers != nil {
			number = e.numbers[i]
		}
		values[i] = &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(number),
		}
	}
	return &descriptorpb.DescriptorProto{
		Name: proto.String(e.name + "Enum"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name:  proto.String(e.name),
			Value: values,
		}},
	}
}

func messageProto(name string, fields []fieldSpec) *descriptorpb.DescriptorProto {
	msg := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for _, f := range fields {
		fp := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(f.name),
			Number: proto.Int32(f.number),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   f.kind.Enum(),
		}
		switch f.kind {
		case tEnum:
			fp.TypeName = proto.String("." + schemaPackage + "." + f.typeName + "Enum." + f.typeName)
		case tMessage:
			fp.TypeName = proto.String("." + schemaPackage + "." + f.typeName)
		}
		msg.Field = append(msg.Field, fp)
	}
	return msg
}

// Covers reports whether every path resolves to a field of md. Segments
// may use field names or JSON names.
func Covers(md protoreflect.MessageDescriptor, paths []string) bool {
	for _, path := range paths {
		if !covers(md, path) {
			return false
		}
	}
	return true
}

func covers(md protoreflect.MessageDescriptor, path string) bool {
	return fieldAt(md, path) != nil
}

// fieldAt returns the field path resolves to, or nil.
func fieldAt(md protoreflect.MessageDescriptor, path string) protoreflect.FieldDescriptor {
	var fd protoreflect.FieldDescriptor
	current := md
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}
		fields := current.Fields()
		fd = fields.ByName(protoreflect.Name(segment))
		if fd == nil {
			fd = fields.ByJSONName(segment)
		}
		if fd == nil {
			return nil
		}
		current = fd.Message()
	}
	return fd
}

// SchemaField describes one selectable field of the row schema.
type SchemaField struct {
	Path       string   `json:"path"`
	Type       string   `json:"type"`
	EnumValues []string `json:"enum_values,omitempty"`
}

// SchemaResource groups the fields of one GAQL resource.
type SchemaResource struct {
	Name   string        `json:"name"`
	Fields []SchemaField `json:"fields"`
}

// SchemaResources lists every resource of the row schema with its fields,
// sorted by resource name.
func SchemaResources() ([]SchemaResource, error) {
	md, err := RowDescriptor()
	if err != nil {
		return nil, err
	}

	var resources []SchemaResource
	rowFields := md.Fields()
	for i := 0; i < rowFields.Len(); i++ {
		rf := rowFields.Get(i)
		res := SchemaResource{Name: string(rf.Name())}

		fields := rf.Message().Fields()
		for j := 0; j < fields.Len(); j++ {
			fd := fields.Get(j)
			sf := SchemaField{
				Path: string(rf.Name()) + "." + string(fd.Name()),
				Type: strings.ToUpper(fd.Kind().String()),
			}
			if fd.Kind() == protoreflect.EnumKind {
				values := fd.Enum().Values()
				for k := 0; k < values.Len(); k++ {
					sf.EnumValues = append(sf.EnumValues, string(values.Get(k).Name()))
				}
			}
			res.Fields = append(res.Fields, sf)
		}
		resources = append(resources, res)
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Name < resources[j].Name
	})
	return resources, nil
}
