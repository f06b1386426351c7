package capability

// Builder helpers replace the toolkit's caps!/caveats! macros with
// ordinary constructors: build an Abilities set with BuildAbilities,
// attach it to resources with NewCapabilities.

// MustAbility parses an ability path, panicking on malformed input.
// Intended for static, known-good ability literals in tests and
// configuration, not for parsing untrusted input.
func MustAbility(path string) Ability {
	a, err := NewAbility(path)
	if err != nil {
		panic(err)
	}
	return a
}

// MustResourceUri parses a resource URI, panicking on malformed input.
func MustResourceUri(uri string) ResourceUri {
	r, err := ParseResourceUri(uri)
	if err != nil {
		panic(err)
	}
	return r
}

// BuildAbilities is a convenience constructor over NewAbilities for
// literal ability -> caveats tables.
func BuildAbilities(table map[string]Caveats) (Abilities, error) {
	entries := make(map[Ability]Caveats, len(table))
	for path, caveats := range table {
		a, err := NewAbility(path)
		if err != nil {
			return Abilities{}, err
		}
		entries[a] = caveats
	}
	return NewAbilities(entries)
}

// BuildCapabilities is a convenience constructor over NewCapabilities
// for a literal resource -> (ability -> caveats) table, as decoded from
// a UCAN token's cap field.
func BuildCapabilities(table map[string]map[string][]Caveat) (Capabilities, error) {
	caps := Capabilities{}
	for uri, abilities := range table {
		resource, err := ParseResourceUri(uri)
		if err != nil {
			return Capabilities{}, err
		}
		entries := make(map[Ability]Caveats, len(abilities))
		for path, members := range abilities {
			a, err := NewAbility(path)
			if err != nil {
				return Capabilities{}, err
			}
			c, err := NewCaveats(members)
			if err != nil {
				return Capabilities{}, err
			}
			entries[a] = c
		}
		abs, err := NewAbilities(entries)
		if err != nil {
			return Capabilities{}, err
		}
		if err := caps.insert(resource, abs); err != nil {
			return Capabilities{}, err
		}
	}
	return caps, nil
}
