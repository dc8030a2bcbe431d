package ddb

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"

	"github.com/letmevibethatforyou/discovery"
)

const insertEvent = `{
	"Records": [{
		"eventID": "1",
		"eventName": "INSERT",
		"eventSource": "aws:dynamodb",
		"awsRegion": "us-east-1",
		"dynamodb": {
			"Keys": {
				"pk": {"S": "work-0001"},
				"sk": {"S": "work"}
			},
			"NewImage": {
				"pk": {"S": "work-0001"},
				"sk": {"S": "work"},
				"object": {
					"M": {
						"id": {"S": "stale-id"},
						"title": {"S": "One Piece"},
						"creator": {"S": "Eiichiro Oda"},
						"type": {"S": "manga"},
						"year": {"N": "1997"},
						"rating": {"N": "4.8"},
						"genres": {"L": [{"S": "adventure"}, {"S": "action"}]},
						"favorites": {"N": "120000"},
						"extra": {"NULL": true}
					}
				}
			},
			"SequenceNumber": "111",
			"SizeBytes": 256,
			"StreamViewType": "NEW_IMAGE"
		}
	}]
}`

func TestStreamImageToEntity(t *testing.T) {
	var event events.DynamoDBEvent
	if err := json.Unmarshal([]byte(insertEvent), &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if len(event.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(event.Records))
	}

	image, err := FromStreamImage(event.Records[0].Change.NewImage)
	if err != nil {
		t.Fatalf("FromStreamImage: %v", err)
	}
	record, err := UnmarshalRecord(image)
	if err != nil {
		t.Fatalf("UnmarshalRecord: %v", err)
	}
	if record.ID != "work-0001" || record.Kind != discovery.KindWork {
		t.Errorf("unexpected keys %s/%s", record.Kind, record.ID)
	}

	e, err := record.Entity()
	if err != nil {
		t.Fatalf("Entity: %v", err)
	}
	w, ok := e.(*discovery.Work)
	if !ok {
		t.Fatalf("expected *discovery.Work, got %T", e)
	}
	if w.ID != "work-0001" {
		t.Errorf("row key must win over object id, got %q", w.ID)
	}
	if w.Year != 1997 || w.Rating != 4.8 || w.Favorites != 120000 {
		t.Errorf("unexpected numbers year=%d rating=%v favorites=%d", w.Year, w.Rating, w.Favorites)
	}
	if len(w.Genres) != 2 || w.Genres[0] != "adventure" {
		t.Errorf("unexpected genres %v", w.Genres)
	}
	if w.SearchText() == "" {
		t.Error("decoded entity must be indexed")
	}
}

func TestFromStreamValueTypes(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"s":    events.NewStringAttribute("text"),
		"n":    events.NewNumberAttribute("42"),
		"b":    events.NewBooleanAttribute(true),
		"null": events.NewNullAttribute(),
		"ss":   events.NewStringSetAttribute([]string{"a", "b"}),
		"l":    events.NewListAttribute([]events.DynamoDBAttributeValue{events.NewStringAttribute("x")}),
		"m": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
			"inner": events.NewNumberAttribute("1.5"),
		}),
	}

	got, err := FromStreamImage(image)
	if err != nil {
		t.Fatalf("FromStreamImage: %v", err)
	}

	if v, ok := got["s"].(*types.AttributeValueMemberS); !ok || v.Value != "text" {
		t.Errorf("s: got %#v", got["s"])
	}
	if v, ok := got["n"].(*types.AttributeValueMemberN); !ok || v.Value != "42" {
		t.Errorf("n: got %#v", got["n"])
	}
	if v, ok := got["b"].(*types.AttributeValueMemberBOOL); !ok || !v.Value {
		t.Errorf("b: got %#v", got["b"])
	}
	if _, ok := got["null"].(*types.AttributeValueMemberNULL); !ok {
		t.Errorf("null: got %#v", got["null"])
	}
	if v, ok := got["ss"].(*types.AttributeValueMemberSS); !ok || len(v.Value) != 2 {
		t.Errorf("ss: got %#v", got["ss"])
	}
	if v, ok := got["l"].(*types.AttributeValueMemberL); !ok || len(v.Value) != 1 {
		t.Errorf("l: got %#v", got["l"])
	}
	m, ok := got["m"].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("m: got %#v", got["m"])
	}
	if v, ok := m.Value["inner"].(*types.AttributeValueMemberN); !ok || v.Value != "1.5" {
		t.Errorf("m.inner: got %#v", m.Value["inner"])
	}

	if out, err := FromStreamImage(nil); err != nil || out != nil {
		t.Errorf("nil image: got %v, %v", out, err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	group := discovery.Index(&discovery.Group{
		Meta:    discovery.Meta{ID: "group-0007"},
		Name:    "Retro Console Club",
		Tags:    []string{"games", "hardware"},
		Members: 2400,
		Region:  "eu",
	})

	record, err := RecordFor(group)
	if err != nil {
		t.Fatalf("RecordFor: %v", err)
	}
	item, err := MarshalRecord(record)
	if err != nil {
		t.Fatalf("MarshalRecord: %v", err)
	}
	if pk, ok := item["pk"].(*types.AttributeValueMemberS); !ok || pk.Value != "group-0007" {
		t.Errorf("pk: got %#v", item["pk"])
	}
	if sk, ok := item["sk"].(*types.AttributeValueMemberS); !ok || sk.Value != "group" {
		t.Errorf("sk: got %#v", item["sk"])
	}

	back, err := UnmarshalRecord(item)
	if err != nil {
		t.Fatalf("UnmarshalRecord: %v", err)
	}
	e, err := back.Entity()
	if err != nil {
		t.Fatalf("Entity: %v", err)
	}
	g := e.(*discovery.Group)
	if g.Name != "Retro Console Club" || g.Members != 2400 || len(g.Tags) != 2 {
		t.Errorf("unexpected group %+v", g)
	}
	if g.SearchText() != group.SearchText() {
		t.Errorf("search text changed: %q vs %q", g.SearchText(), group.SearchText())
	}
}

func TestRecordEntityErrors(t *testing.T) {
	tests := map[string]Record{
		"missing id":     {Kind: discovery.KindPerson, Object: map[string]any{"name": "x"}},
		"unknown kind":   {ID: "p1", Kind: "planet", Object: map[string]any{"name": "x"}},
		"missing object": {ID: "p1", Kind: discovery.KindPerson},
		"bad field type": {ID: "p1", Kind: discovery.KindPerson, Object: map[string]any{"followers": "many"}},
	}
	for name, record := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := record.Entity(); !errors.Is(err, discovery.ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}
