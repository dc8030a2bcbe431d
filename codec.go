package discovery

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Document field names added around an entity's own JSON fields.
const (
	FieldKind       = "kind"
	FieldSearchable = "searchable"
)

type indexable interface {
	Entity
	Index()
}

func newEntity(kind Kind) (indexable, error) {
	switch kind {
	case KindPerson:
		return &Person{}, nil
	case KindWork:
		return &Work{}, nil
	case KindPost:
		return &Post{}, nil
	case KindGroup:
		return &Group{}, nil
	case KindOrganization:
		return &Organization{}, nil
	default:
		return nil, errors.WithSecondaryError(ErrUnknownKind, errors.Newf("kind %q", kind))
	}
}

// DecodeEntity parses the JSON fields of an entity of the given kind and
// computes its searchable text.
func DecodeEntity(kind Kind, data []byte) (Entity, error) {
	e, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, errors.WithSecondaryError(ErrInvalidRecord, errors.Wrapf(err, "decode %s", kind))
	}
	if e.EntityID() == "" {
		return nil, errors.WithSecondaryError(ErrInvalidRecord, errors.Newf("%s without id", kind))
	}
	e.Index()
	return e, nil
}

// DecodeDocument parses a self-describing document whose "kind" field names
// the entity kind.
func DecodeDocument(data []byte) (Entity, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.WithSecondaryError(ErrInvalidRecord, errors.Wrap(err, "decode document kind"))
	}
	return DecodeEntity(head.Kind, data)
}

// Index computes the searchable text of e when e supports it. Entities built
// as struct literals must pass through Index before being searched.
func Index(e Entity) Entity {
	if ix, ok := e.(indexable); ok {
		ix.Index()
	}
	return e
}

// EncodeDocument flattens e into a self-describing document carrying its
// kind and searchable text, suitable for external indexes.
func EncodeDocument(e Entity) (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s %s", e.EntityKind(), e.EntityID())
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "flatten %s %s", e.EntityKind(), e.EntityID())
	}
	doc[FieldKind] = string(e.EntityKind())
	doc[FieldSearchable] = e.SearchText()
	return doc, nil
}
