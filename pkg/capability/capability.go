package capability

// abilityEntry pairs an ability with the caveats that restrict it.
type abilityEntry struct {
	Ability Ability
	Caveats Caveats
}

// Abilities is a non-empty set of actions that may be performed on a
// resource, each with its own caveats.
type Abilities struct {
	entries []abilityEntry
}

// NewAbilities validates and builds an Abilities set. For a ucan:
// resource, the only allowed ability is ucan/* with caveats [{}]; this
// is enforced by the caller (Capabilities.insert), which knows whether
// the paired resource is a ucan: reference.
func NewAbilities(entries map[Ability]Caveats) (Abilities, error) {
	if len(entries) == 0 {
		return Abilities{}, &Error{Kind: ErrInvalidAbility, Message: "abilities must be non-empty"}
	}
	out := Abilities{}
	for a, c := range entries {
		out.entries = append(out.entries, abilityEntry{Ability: a, Caveats: c})
	}
	return out, nil
}

// Get returns the caveats registered for ability a, if present.
func (abs Abilities) Get(a Ability) (Caveats, bool) {
	for _, e := range abs.entries {
		if e.Ability.Equal(a) {
			return e.Caveats, true
		}
	}
	return nil, false
}

// capabilityEntry pairs a resource with the abilities granted on it.
type capabilityEntry struct {
	Resource  ResourceUri
	Abilities Abilities
}

// Capabilities is an ordered mapping from ResourceUri to Abilities, as
// found in a UCAN token's cap field. Order is preserved from
// construction since insertion order determines which entry a lookup
// matches first when multiple entries could apply.
type Capabilities struct {
	entries []capabilityEntry
}

// NewCapabilities validates and builds a Capabilities set, enforcing
// that any ucan: resource carries exactly the ucan/* ability with the
// any caveats set.
func NewCapabilities(resources []ResourceUri, abilities []Abilities) (Capabilities, error) {
	if len(resources) != len(abilities) {
		return Capabilities{}, &Error{Kind: ErrInvalidCaveats, Message: "resources and abilities length mismatch"}
	}
	caps := Capabilities{}
	for i, r := range resources {
		if err := caps.insert(r, abilities[i]); err != nil {
			return Capabilities{}, err
		}
	}
	return caps, nil
}

func (c *Capabilities) insert(r ResourceUri, abs Abilities) error {
	if r.IsUcanReference() {
		if len(abs.entries) != 1 {
			return &Error{Kind: ErrInvalidAbility, Message: "ucan: resource must carry exactly the ucan/* ability"}
		}
		ucanStar, _ := NewAbility("ucan/*")
		e := abs.entries[0]
		if !e.Ability.Equal(ucanStar) {
			return &Error{Kind: ErrInvalidAbility, Message: "ucan: resource only permits ucan/*"}
		}
		if !e.Caveats.IsAny() {
			return &Error{Kind: ErrInvalidCaveats, Message: "ucan: resource's ucan/* ability must carry the any caveats set"}
		}
	}
	c.entries = append(c.entries, capabilityEntry{Resource: r, Abilities: abs})
	return nil
}

// Permits reports whether some (resource, ability, caveats) entry in c
// permits the requested resource/ability/caveats tuple.
func (c Capabilities) Permits(resource ResourceUri, ability Ability, caveats Caveats) (ResourceUri, Ability, Caveats, bool) {
	for _, e := range c.entries {
		if !e.Resource.Permits(resource) {
			continue
		}
		for _, a := range e.Abilities.entries {
			if a.Ability.Permits(ability) && a.Caveats.Permits(caveats) {
				return e.Resource, a.Ability, a.Caveats, true
			}
		}
	}
	return ResourceUri{}, Ability{}, nil, false
}

// CapabilityEntry is one (resource, abilities) pair of a Capabilities set.
type CapabilityEntry struct {
	Resource  ResourceUri
	Abilities Abilities
}

// Entries returns the (resource, abilities) pairs in insertion order.
func (c Capabilities) Entries() []CapabilityEntry {
	out := make([]CapabilityEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = CapabilityEntry{Resource: e.Resource, Abilities: e.Abilities}
	}
	return out
}

// AbilityEntry is one (ability, caveats) pair of an Abilities set.
type AbilityEntry struct {
	Ability Ability
	Caveats Caveats
}

// AbilityEntries returns the (ability, caveats) pairs of abs.
func (abs Abilities) AbilityEntries() []AbilityEntry {
	out := make([]AbilityEntry, len(abs.entries))
	for i, e := range abs.entries {
		out[i] = AbilityEntry{Ability: e.Ability, Caveats: e.Caveats}
	}
	return out
}
