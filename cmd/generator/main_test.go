package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/letmevibethatforyou/discovery/internal/catalog"
	"github.com/letmevibethatforyou/discovery/internal/ddb"
)

// throttlingWriter leaves the last item of the first batch unprocessed.
type throttlingWriter struct {
	calls   int
	written []map[string]types.AttributeValue
	err     error
}

func (w *throttlingWriter) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	out := &dynamodb.BatchWriteItemOutput{}
	for table, requests := range params.RequestItems {
		if len(requests) > maxBatch {
			return nil, errors.New("batch too large")
		}
		if w.calls == 1 && len(requests) > 1 {
			last := len(requests) - 1
			out.UnprocessedItems = map[string][]types.WriteRequest{table: requests[last:]}
			requests = requests[:last]
		}
		for _, r := range requests {
			w.written = append(w.written, r.PutRequest.Item)
		}
	}
	return out, nil
}

func TestWriteEntities(t *testing.T) {
	entities := catalog.Generate(catalog.DefaultSeed, 6)
	w := &throttlingWriter{}

	if err := writeEntities(context.Background(), w, "catalog", entities); err != nil {
		t.Fatalf("writeEntities: %v", err)
	}

	// 30 entities: a batch of 25 with one retry, then a batch of 5.
	if w.calls != 3 {
		t.Errorf("expected 3 BatchWriteItem calls, got %d", w.calls)
	}
	if len(w.written) != len(entities) {
		t.Fatalf("expected %d items written, got %d", len(entities), len(w.written))
	}

	seen := make(map[string]bool)
	for _, item := range w.written {
		record, err := ddb.UnmarshalRecord(item)
		if err != nil {
			t.Fatalf("UnmarshalRecord: %v", err)
		}
		if _, err := record.Entity(); err != nil {
			t.Errorf("written row %s/%s does not decode: %v", record.Kind, record.ID, err)
		}
		seen[string(record.Kind)+"/"+record.ID] = true
	}
	if len(seen) != len(entities) {
		t.Errorf("expected %d distinct rows, got %d", len(entities), len(seen))
	}
}

func TestWriteEntitiesFailure(t *testing.T) {
	w := &throttlingWriter{err: errors.New("throughput exceeded")}
	if err := writeEntities(context.Background(), w, "catalog", catalog.Generate(1, 1)); err == nil {
		t.Fatal("expected error")
	}
}
