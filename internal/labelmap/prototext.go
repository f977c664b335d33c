package labelmap

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Only the StringIntLabelMap fields the engines use are declared; the rest of
// the upstream message (keypoints, frequency, ...) is discarded on parse.
var labelMapFile = &descriptorpb.FileDescriptorProto{
	Name:    proto.String("ondevice/string_int_label_map.proto"),
	Package: proto.String("object_detection.protos"),
	Syntax:  proto.String("proto2"),
	MessageType: []*descriptorpb.DescriptorProto{
		{
			Name: proto.String("StringIntLabelMapItem"),
			Field: []*descriptorpb.FieldDescriptorProto{
				optionalField("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				optionalField("id", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				optionalField("display_name", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			},
		},
		{
			Name: proto.String("StringIntLabelMap"),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:     proto.String("item"),
					JsonName: proto.String("item"),
					Number:   proto.Int32(1),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
					TypeName: proto.String(".object_detection.protos.StringIntLabelMapItem"),
				},
			},
		},
	},
}

func optionalField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
	}
}

var labelMapDescriptor = sync.OnceValues(func() (protoreflect.MessageDescriptor, error) {
	fd, err := protodesc.NewFile(labelMapFile, new(protoregistry.Files))
	if err != nil {
		return nil, err
	}

	return fd.Messages().ByName("StringIntLabelMap"), nil
})

func parseProtoText(data []byte) (*LabelMap, error) {
	md, err := labelMapDescriptor()
	if err != nil {
		return nil, fmt.Errorf("failed to build label map descriptor: %w", err)
	}

	msg := dynamicpb.NewMessage(md)
	if err := (prototext.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, msg); err != nil {
		return nil, err
	}

	itemField := md.Fields().ByName("item")
	itemDesc := itemField.Message()
	nameField := itemDesc.Fields().ByName("name")
	idField := itemDesc.Fields().ByName("id")
	displayField := itemDesc.Fields().ByName("display_name")

	lm := &LabelMap{names: make(map[int]string)}
	items := msg.Get(itemField).List()
	for i := 0; i < items.Len(); i++ {
		item := items.Get(i).Message()
		if !item.Has(idField) {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidLabelItem, i)
		}

		name := item.Get(displayField).String()
		if name == "" {
			name = item.Get(nameField).String()
		}
		if name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidLabelItem, i)
		}

		if err := lm.add(int(item.Get(idField).Int()), name); err != nil {
			return nil, err
		}
	}

	return lm, nil
}
