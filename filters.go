package discovery

import (
	"strconv"
	"strings"
	"time"
)

// Any is the reserved filter value that always passes.
const Any = "any"

// FilterValues is the raw key/value filter state of one entity kind as the UI
// holds it. Values that are unset, "any" or unparsable never exclude anything.
type FilterValues map[string]string

// Filters is the filter state of every kind.
type Filters map[Kind]FilterValues

// For returns the values of kind, never nil.
func (f Filters) For(kind Kind) FilterValues {
	if v, ok := f[kind]; ok && v != nil {
		return v
	}
	return FilterValues{}
}

// Clone returns a deep copy so snapshots never alias live UI state.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v.Clone()
	}
	return out
}

// Clone returns a copy of v.
func (v FilterValues) Clone() FilterValues {
	if v == nil {
		return nil
	}
	out := make(FilterValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Get returns the trimmed value of key when it is set to something other
// than Any.
func (v FilterValues) Get(key string) (string, bool) {
	raw := strings.TrimSpace(v[key])
	if raw == "" || strings.EqualFold(raw, Any) {
		return "", false
	}
	return raw, true
}

// Int returns key parsed as a non-negative integer.
func (v FilterValues) Int(key string) (int64, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Float returns key parsed as a non-negative float.
func (v FilterValues) Float(key string) (float64, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// Bool returns key parsed as a boolean.
func (v FilterValues) Bool(key string) (bool, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return b, true
}

// List returns key split on commas with blanks removed.
func (v FilterValues) List(key string) ([]string, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return nil, false
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" && !strings.EqualFold(part, Any) {
			out = append(out, part)
		}
	}
	return out, len(out) > 0
}

// IntRange returns key parsed either as a single integer ("2020") or as an
// inclusive range ("2010-2020"). A reversed range is swapped.
func (v FilterValues) IntRange(key string) (int64, int64, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return 0, 0, false
	}
	lo, hi, found := strings.Cut(raw, "-")
	if !found {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		return n, n, true
	}
	a, errA := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	b, errB := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	if a > b {
		a, b = b, a
	}
	return a, b, true
}

// Date returns key parsed as a YYYY-MM-DD calendar date in UTC.
func (v FilterValues) Date(key string) (time.Time, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
