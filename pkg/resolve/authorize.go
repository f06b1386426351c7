package resolve

import "github.com/zeroutils-go/zeroucan/pkg/ucan"

// Authorize resolves u's proof chain against authority and checks every
// final tuple against the root authority's CapabilitiesDefinition
// (§4.7's "root acceptance" rule), discarding any that aren't declared
// acceptable. Transient ucan:* markers are reported separately since
// they don't name a concrete resource to check acceptance against.
func Authorize(u *ucan.Ucan, authority RootAuthority, store Store, now uint64) (*ucan.Authorization, []string, error) {
	results, err := Resolve(u, authority, store, now)
	if err != nil {
		return nil, nil, err
	}

	var finals []ucan.ResolvedCapability
	var transient []string
	for _, r := range results {
		if r.Tuple != nil {
			if authority.Definition != nil && !authority.Definition.Accepts(r.Tuple.Resource, r.Tuple.Ability, r.Tuple.Caveats) {
				continue
			}
			finals = append(finals, ucan.ResolvedCapability{
				Resource: r.Tuple.Resource,
				Ability:  r.Tuple.Ability,
				Caveats:  r.Tuple.Caveats,
			})
		} else {
			transient = append(transient, r.TransientDID)
		}
	}

	return ucan.NewAuthorization(u, authority.DID.String(), finals), transient, nil
}
