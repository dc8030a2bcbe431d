package discovery

import "github.com/cockroachdb/errors"

// Kind identifies one family of searchable entities.
type Kind string

const (
	// KindPerson is a creator, artist or other profile.
	KindPerson Kind = "person"
	// KindWork is a creative work: a series, film, novel or album.
	KindWork Kind = "work"
	// KindPost is a user post.
	KindPost Kind = "post"
	// KindGroup is a community group.
	KindGroup Kind = "group"
	// KindOrganization is a studio, publisher or other organization.
	KindOrganization Kind = "organization"
)

// Kinds lists every entity kind in canonical order.
var Kinds = []Kind{KindPerson, KindWork, KindPost, KindGroup, KindOrganization}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPerson, KindWork, KindPost, KindGroup, KindOrganization:
		return true
	default:
		return false
	}
}

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", errors.WithSecondaryError(ErrUnknownKind, errors.Newf("kind %q", s))
	}
	return k, nil
}

// SortMode selects the ordering of a kind's result sequence.
type SortMode string

const (
	// SortRelevance orders by score, then popularity, then recency.
	SortRelevance SortMode = "relevance"
	// SortNewest orders by recency, then popularity, then score.
	SortNewest SortMode = "newest"
)

// ParseSortMode returns the sort mode named by s, falling back to
// SortRelevance for anything unknown.
func ParseSortMode(s string) SortMode {
	if SortMode(s) == SortNewest {
		return SortNewest
	}
	return SortRelevance
}

// Scope is the entity tab a query was issued from: ScopeAll or one Kind.
type Scope string

// ScopeAll covers every kind.
const ScopeAll Scope = "all"

// ParseScope returns the scope named by s, falling back to ScopeAll.
func ParseScope(s string) Scope {
	if s == string(ScopeAll) || Kind(s).Valid() {
		return Scope(s)
	}
	return ScopeAll
}

// ErrorCode represents specific error codes for discovery operations.
type ErrorCode int

const (
	// ErrCodeUnknownKind is returned when an entity kind is not recognized.
	ErrCodeUnknownKind ErrorCode = iota + 1000

	// ErrCodeInvalidRecord is returned when an entity or durable record cannot be decoded.
	ErrCodeInvalidRecord

	// ErrCodeTimeout is returned when an operation times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when an operation is canceled.
	ErrCodeCanceled

	// ErrCodeSuperseded is returned when a newer execution replaced this one.
	ErrCodeSuperseded

	// ErrCodeBackendUnavailable is returned when the data source is unavailable.
	ErrCodeBackendUnavailable
)

// String returns the human-readable string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeUnknownKind:
		return "unknown kind"
	case ErrCodeInvalidRecord:
		return "invalid record"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeSuperseded:
		return "superseded"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

var (
	// ErrUnknownKind is returned for an unrecognized entity kind.
	ErrUnknownKind = newErrorWithCode(ErrCodeUnknownKind, "discovery: unknown kind")

	// ErrInvalidRecord is returned when stored or fetched data cannot be decoded.
	ErrInvalidRecord = newErrorWithCode(ErrCodeInvalidRecord, "discovery: invalid record")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = newErrorWithCode(ErrCodeTimeout, "discovery: operation timed out")

	// ErrCanceled is returned when an operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "discovery: operation canceled")

	// ErrSuperseded is returned to an execution whose results were discarded
	// because a newer one was issued.
	ErrSuperseded = newErrorWithCode(ErrCodeSuperseded, "discovery: superseded by a newer execution")

	// ErrBackendUnavailable is returned when the data source fails.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "discovery: backend unavailable")
)
