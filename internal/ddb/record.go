// Package ddb maps catalog rows stored in DynamoDB to discovery entities.
//
// A row is keyed by pk (entity id) and sk (entity kind) and carries the
// entity document under "object".
package ddb

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"

	"github.com/letmevibethatforyou/discovery"
)

// Record is one catalog row.
type Record struct {
	ID     string         `dynamodbav:"pk"`
	Kind   discovery.Kind `dynamodbav:"sk"`
	Object map[string]any `dynamodbav:"object,omitempty"`
}

// UnmarshalRecord converts an item image into a Record.
func UnmarshalRecord(image map[string]types.AttributeValue) (Record, error) {
	var record Record
	if err := attributevalue.UnmarshalMap(image, &record); err != nil {
		return Record{}, errors.WithSecondaryError(discovery.ErrInvalidRecord, errors.Wrap(err, "unmarshal catalog row"))
	}
	return record, nil
}

// RecordFor builds the row of e. The object holds the entity document,
// including its kind and searchable text.
func RecordFor(e discovery.Entity) (Record, error) {
	doc, err := discovery.EncodeDocument(e)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: e.EntityID(), Kind: e.EntityKind(), Object: doc}, nil
}

// MarshalRecord converts a Record into an item.
func MarshalRecord(r Record) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal catalog row %s/%s", r.Kind, r.ID)
	}
	return item, nil
}

// Validate reports whether the row keys name a known kind and an id.
func (r Record) Validate() error {
	if r.ID == "" {
		return errors.WithSecondaryError(discovery.ErrInvalidRecord, errors.New("missing id (pk)"))
	}
	if !r.Kind.Valid() {
		return errors.WithSecondaryError(discovery.ErrInvalidRecord, errors.Newf("unknown kind (sk) %q", r.Kind))
	}
	return nil
}

// Entity decodes the row object. The row keys win over any id or kind in
// the object itself.
func (r Record) Entity() (discovery.Entity, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Object == nil {
		return nil, errors.WithSecondaryError(discovery.ErrInvalidRecord, errors.Newf("%s %s has no object", r.Kind, r.ID))
	}

	doc := make(map[string]any, len(r.Object)+1)
	for k, v := range r.Object {
		doc[k] = v
	}
	doc["id"] = r.ID

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WithSecondaryError(discovery.ErrInvalidRecord, errors.Wrapf(err, "encode %s %s", r.Kind, r.ID))
	}
	return discovery.DecodeEntity(r.Kind, data)
}

// FromStreamImage converts a stream image as delivered to Lambda into SDK
// attribute values.
func FromStreamImage(image map[string]events.DynamoDBAttributeValue) (map[string]types.AttributeValue, error) {
	if image == nil {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		av, err := fromStreamValue(v)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", k)
		}
		out[k] = av
	}
	return out, nil
}

func fromStreamValue(v events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}, nil
	case events.DataTypeList:
		list := v.List()
		out := make([]types.AttributeValue, len(list))
		for i, item := range list {
			av, err := fromStreamValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = av
		}
		return &types.AttributeValueMemberL{Value: out}, nil
	case events.DataTypeMap:
		m, err := FromStreamImage(v.Map())
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, errors.Newf("unsupported attribute type %v", v.DataType())
	}
}
