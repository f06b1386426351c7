package capability

import "strings"

// Ability is a slash-separated path of segments describing what may be
// done to a resource, e.g. "msg/send" or the bare top wildcard "*".
// Ability paths are delegated downward: a capability may only be
// re-delegated with an ability equal to or narrower than the one it was
// granted with. Stored as its validated canonical string rather than a
// parsed segment slice so that Ability stays comparable and usable as a
// map key; segments are re-split on demand.
type Ability struct {
	path string
}

// NewAbility parses and validates an ability path string.
func NewAbility(s string) (Ability, error) {
	if s == "" {
		return Ability{}, &Error{Kind: ErrInvalidAbility, Message: "empty ability"}
	}
	if _, err := splitPath(s); err != nil {
		return Ability{}, err
	}
	return Ability{path: s}, nil
}

// String renders the ability back to its path form.
func (a Ability) String() string {
	return a.path
}

// segments re-splits the ability's canonical path. NewAbility already
// validated it, so the error is always nil here.
func (a Ability) segments() []Segment {
	segs, _ := splitPath(a.path)
	return segs
}

// isTopWildcard reports whether a is the bare "*" ability, which permits
// any ability for the resource it is paired with.
func (a Ability) isTopWildcard() bool {
	segs := a.segments()
	return len(segs) == 1 && segs[0].wildcard
}

// IsUcanStar reports whether a is exactly "ucan/*", the sentinel
// ability used on `ucan:` proof-reference resources to mean "forward
// whatever this proof grants" rather than a concrete resource ability.
func (a Ability) IsUcanStar() bool {
	return a.isUcanStar()
}

// isUcanStar reports whether a is exactly "ucan/*". The ucan delegation
// ability is deliberately not treated as a generic wildcard: it permits
// only further ucan/* delegation, never an arbitrary ucan ability,
// so that delegation rights can't be used to escalate into unrelated
// resource abilities.
func (a Ability) isUcanStar() bool {
	segs := a.segments()
	return len(segs) == 2 &&
		strings.EqualFold(segs[0].name, "ucan") &&
		segs[1].wildcard
}

// Permits reports whether a capability granted with ability a may in
// turn authorize ability b. True iff a == b, or a is the top wildcard,
// or every segment of b matches the corresponding segment of a where a
// "*" segment in a matches any single remaining tail of b. As a special
// case, "ucan/*" permits only "ucan/*".
func (a Ability) Permits(b Ability) bool {
	if a.isTopWildcard() {
		return true
	}
	if a.isUcanStar() || b.isUcanStar() {
		return a.isUcanStar() && b.isUcanStar()
	}
	aSegs, bSegs := a.segments(), b.segments()
	for i, seg := range aSegs {
		if seg.wildcard {
			return true
		}
		if i >= len(bSegs) {
			return false
		}
		if !seg.Equal(bSegs[i]) {
			return false
		}
	}
	return len(aSegs) == len(bSegs)
}

// Equal reports whether a and b are the same ability path.
func (a Ability) Equal(b Ability) bool {
	aSegs, bSegs := a.segments(), b.segments()
	if len(aSegs) != len(bSegs) {
		return false
	}
	for i, seg := range aSegs {
		if !seg.Equal(bSegs[i]) {
			return false
		}
	}
	return true
}
