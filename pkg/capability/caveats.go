package capability

// Caveat is a single JSON object of restrictions on how an ability may
// be exercised.
type Caveat map[string]any

// Caveats is a non-empty list of caveat objects. A single empty object
// ([{}]) is the "any" caveat and applies unconditionally. If the list
// has more than one member, every member must be non-empty: mixing an
// "any" caveat into a list of stricter ones would silently widen access
// back to "any case".
type Caveats []Caveat

// Any builds the caveats set that applies in all cases.
func Any() Caveats {
	return Caveats{Caveat{}}
}

// NewCaveats validates and builds a Caveats set from the given members.
func NewCaveats(members []Caveat) (Caveats, error) {
	if len(members) == 0 {
		return nil, &Error{Kind: ErrInvalidCaveats, Message: "caveats must be non-empty"}
	}
	if len(members) > 1 {
		for _, m := range members {
			if len(m) == 0 {
				return nil, &Error{Kind: ErrInvalidCaveats, Message: "caveats mix: an empty (any) caveat cannot appear alongside stricter ones"}
			}
		}
	}
	return Caveats(members), nil
}

// IsAny reports whether c is exactly the any-caveats set [{}].
func (c Caveats) IsAny() bool {
	return len(c) == 1 && len(c[0]) == 0
}

// isSubsetOf reports whether every key in a is present in b with an
// equal value, i.e. a imposes no restriction that b doesn't already.
func (a Caveat) isSubsetOf(b Caveat) bool {
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !caveatValuesEqual(v, bv) {
			return false
		}
	}
	return true
}

// Permits reports whether this (granted) caveats set permits every
// member of requested: for each requested member there must be some
// member of self that is a subset of it (self imposes no restriction
// absent from the request). The any caveats set permits everything.
func (self Caveats) Permits(requested Caveats) bool {
	if self.IsAny() {
		return true
	}
	for _, req := range requested {
		matched := false
		for _, own := range self {
			if own.isSubsetOf(req) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// caveatValuesEqual compares two caveat values for equality. Caveat
// values come from decoded JSON, so they're always one of the small set
// of types encoding/json produces.
func caveatValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !caveatValuesEqual(v, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !caveatValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
