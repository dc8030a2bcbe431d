package dynamorecord

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/history"
)

var _ history.Record = (*Record)(nil)

// mockClient keeps items in a map keyed by pk/sk.
type mockClient struct {
	items map[string]map[string]types.AttributeValue
	err   error
	table string
}

func newMockClient() *mockClient {
	return &mockClient{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(m map[string]types.AttributeValue) string {
	pk := m["pk"].(*types.AttributeValueMemberS).Value
	sk := m["sk"].(*types.AttributeValueMemberS).Value
	return pk + "/" + sk
}

func (m *mockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.table = aws.ToString(params.TableName)
	return &dynamodb.GetItemOutput{Item: m.items[keyOf(params.Key)]}, nil
}

func (m *mockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.table = aws.ToString(params.TableName)
	m.items[keyOf(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	delete(m.items, keyOf(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	client := newMockClient()
	rec := New(client, "history-table", "user-1")

	if _, ok, err := rec.Load(ctx, history.HistoryKey); err != nil || ok {
		t.Fatalf("expected missing item, got ok=%v err=%v", ok, err)
	}

	if err := rec.Save(ctx, history.HistoryKey, []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if client.table != "history-table" {
		t.Errorf("expected table history-table, got %q", client.table)
	}
	if _, ok := client.items["user-1/"+history.HistoryKey]; !ok {
		t.Errorf("item not keyed by owner and record key: %v", client.items)
	}

	got, ok, err := rec.Load(ctx, history.HistoryKey)
	if err != nil || !ok || string(got) != `[]` {
		t.Fatalf("Load = %q, %v, %v", got, ok, err)
	}

	if err := rec.Delete(ctx, history.HistoryKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(client.items) != 0 {
		t.Errorf("expected no items after delete, got %d", len(client.items))
	}
}

func TestRecordOwnersIsolated(t *testing.T) {
	ctx := context.Background()
	client := newMockClient()
	a := New(client, "t", "a")
	b := New(client, "t", "b")

	if err := a.Save(ctx, history.SavedKey, []byte(`["a"]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok, _ := b.Load(ctx, history.SavedKey); ok {
		t.Error("owner b must not see owner a's record")
	}
}

func TestRecordErrors(t *testing.T) {
	ctx := context.Background()
	client := newMockClient()
	client.err = errors.New("throttled")
	rec := New(client, "t", "u")

	if _, _, err := rec.Load(ctx, "k"); err == nil {
		t.Error("expected Load error")
	}
	if err := rec.Save(ctx, "k", nil); err == nil {
		t.Error("expected Save error")
	}
	if err := rec.Delete(ctx, "k"); err == nil {
		t.Error("expected Delete error")
	}
}

func TestStoreOverDynamo(t *testing.T) {
	ctx := context.Background()
	client := newMockClient()

	s := history.New(New(client, "t", "u"))
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.RecordExecution(ctx, discovery.NewRequest("dandadan"), nil)

	s2 := history.New(New(client, "t", "u"))
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := s2.History(); len(h) != 1 || h[0].Request.Query != "dandadan" {
		t.Errorf("unexpected history %+v", h)
	}
}
