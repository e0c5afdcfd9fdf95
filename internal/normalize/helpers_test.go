package normalize

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

// testRowDescriptor builds:
//
//	enum Status { UNSPECIFIED = 0; ENABLED = 2; PAUSED = 3; }
//	message Budget { int64 amount_micros = 1; }
//	message Campaign { int64 id = 1; string name = 2; Status status = 3; Budget budget = 4; repeated string labels = 5; }
//	message Row { Campaign campaign = 1; }
func testRowDescriptor(t *testing.T) protoreflect.MessageDescriptor {
	t.Helper()

	labels := field("labels", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING, "")
	labels.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("normalize_test.proto"),
		Package: proto.String("normalizetest"),
		Syntax:  proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name: proto.String("Status"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("UNSPECIFIED"), Number: proto.Int32(0)},
				{Name: proto.String("ENABLED"), Number: proto.Int32(2)},
				{Name: proto.String("PAUSED"), Number: proto.Int32(3)},
			},
		}},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Budget"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("amount_micros", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64, ""),
				},
			},
			{
				Name: proto.String("Campaign"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("id", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64, ""),
					field("name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("status", 3, descriptorpb.FieldDescriptorProto_TYPE_ENUM, ".normalizetest.Status"),
					field("budget", 4, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".normalizetest.Budget"),
					labels,
				},
			},
			{
				Name: proto.String("Row"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("campaign", 1, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".normalizetest.Campaign"),
				},
			},
		},
	}

	fd, err := protodesc.NewFile(fdp, nil)
	require.NoError(t, err)
	return fd.Messages().ByName("Row")
}

// summerSaleRow returns a Row with campaign id 123, name "Summer Sale",
// status ENABLED, a budget of 5000000 micros and two labels.
func summerSaleRow(t *testing.T) *dynamicpb.Message {
	t.Helper()

	rowDesc := testRowDescriptor(t)
	campaignField := rowDesc.Fields().ByName("campaign")
	campaignDesc := campaignField.Message()
	budgetDesc := campaignDesc.Fields().ByName("budget").Message()

	budget := dynamicpb.NewMessage(budgetDesc)
	budget.Set(budgetDesc.Fields().ByName("amount_micros"), protoreflect.ValueOfInt64(5000000))

	campaign := dynamicpb.NewMessage(campaignDesc)
	fields := campaignDesc.Fields()
	campaign.Set(fields.ByName("id"), protoreflect.ValueOfInt64(123))
	campaign.Set(fields.ByName("name"), protoreflect.ValueOfString("Summer Sale"))
	campaign.Set(fields.ByName("status"), protoreflect.ValueOfEnum(2))
	campaign.Set(fields.ByName("budget"), protoreflect.ValueOfMessage(budget))
	labels := campaign.Mutable(fields.ByName("labels")).List()
	labels.Append(protoreflect.ValueOfString("seasonal"))
	labels.Append(protoreflect.ValueOfString("brand"))

	row := dynamicpb.NewMessage(rowDesc)
	row.Set(campaignField, protoreflect.ValueOfMessage(campaign))
	return row
}

func statusEnum(t *testing.T, number protoreflect.EnumNumber) protoreflect.Enum {
	t.Helper()
	ed := testRowDescriptor(t).ParentFile().Enums().ByName("Status")
	return dynamicpb.NewEnumType(ed).New(number)
}
