package discovery

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestDecodeDocument(t *testing.T) {
	tests := map[string]struct {
		data     string
		wantKind Kind
		wantText string
		wantErr  error
	}{
		"person": {
			data:     `{"kind":"person","id":"p1","name":"Mika Satō","handle":"@mika","role":"artist","followers":10}`,
			wantKind: KindPerson,
			wantText: "mika sato @mika artist",
		},
		"work": {
			data:     `{"kind":"work","id":"w1","title":"One Piece","creator":"Oda","type":"manga","year":1997,"genres":["adventure"]}`,
			wantKind: KindWork,
			wantText: "one piece oda manga 1997 adventure",
		},
		"unknown_kind": {
			data:    `{"kind":"planet","id":"x"}`,
			wantErr: ErrUnknownKind,
		},
		"missing_id": {
			data:    `{"kind":"group","name":"No id"}`,
			wantErr: ErrInvalidRecord,
		},
		"malformed": {
			data:    `{"kind":`,
			wantErr: ErrInvalidRecord,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e, err := DecodeDocument([]byte(tc.data))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.EntityKind() != tc.wantKind {
				t.Errorf("kind = %s, expected %s", e.EntityKind(), tc.wantKind)
			}
			if e.SearchText() != tc.wantText {
				t.Errorf("text = %q, expected %q", e.SearchText(), tc.wantText)
			}
		})
	}
}

func TestEncodeDocumentRoundTrip(t *testing.T) {
	g := Index(&Group{Meta: Meta{ID: "g1"}, Name: "Night Readers", Region: "EU", Tags: []string{"books"}, Members: 40})
	doc, err := EncodeDocument(g)
	if err != nil {
		t.Fatalf("EncodeDocument failed: %v", err)
	}
	if doc[FieldKind] != "group" || doc[FieldSearchable] != "night readers eu books" {
		t.Errorf("unexpected document %v", doc)
	}
	if doc["name"] != "Night Readers" {
		t.Errorf("entity fields must be flattened, got %v", doc)
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParseKind("work"); err != nil {
		t.Errorf("ParseKind(work) failed: %v", err)
	}
	if _, err := ParseKind("nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if ParseSortMode("newest") != SortNewest || ParseSortMode("bogus") != SortRelevance {
		t.Error("ParseSortMode fallback broken")
	}
	if ParseScope("post") != Scope(KindPost) || ParseScope("bogus") != ScopeAll {
		t.Error("ParseScope fallback broken")
	}
}

func TestLoadCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches_every_kind", func(t *testing.T) {
		ds := DataSourceFunc(func(_ context.Context, kind Kind) ([]Entity, error) {
			if kind == KindGroup {
				return []Entity{Index(&Group{Meta: Meta{ID: "g1"}, Name: "Readers"})}, nil
			}
			return nil, nil
		})
		c, err := LoadCatalog(ctx, ds)
		if err != nil {
			t.Fatalf("LoadCatalog failed: %v", err)
		}
		if len(c) != len(Kinds) || len(c.Entities(KindGroup)) != 1 {
			t.Errorf("unexpected catalog %v", c)
		}
	})

	t.Run("failure_is_backend_unavailable", func(t *testing.T) {
		ds := DataSourceFunc(func(_ context.Context, kind Kind) ([]Entity, error) {
			if kind == KindPost {
				return nil, errors.New("disk on fire")
			}
			return nil, nil
		})
		_, err := LoadCatalog(ctx, ds)
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Errorf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("canceled_context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		ds := DataSourceFunc(func(ctx context.Context, _ Kind) ([]Entity, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		_, err := LoadCatalog(cctx, ds)
		if !errors.Is(err, ErrCanceled) {
			t.Errorf("expected ErrCanceled, got %v", err)
		}
	})

	t.Run("catalog_short_circuit", func(t *testing.T) {
		static := StaticCatalog{KindWork: {Index(&Work{Meta: Meta{ID: "w1"}, Title: "Solo"})}}
		c, err := LoadCatalog(ctx, static)
		if err != nil {
			t.Fatalf("LoadCatalog failed: %v", err)
		}
		if len(c.Entities(KindWork)) != 1 {
			t.Errorf("expected the synchronous catalog snapshot, got %v", c)
		}
	})
}
