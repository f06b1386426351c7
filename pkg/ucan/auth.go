package ucan

import "github.com/zeroutils-go/zeroucan/pkg/capability"

// ResolvedCapability is one ground capability tuple produced by proof
// chain resolution: requested somewhere along the chain, delegated at
// every hop, and grounded at the root authority.
type ResolvedCapability struct {
	Resource capability.ResourceUri
	Ability  capability.Ability
	Caveats  capability.Caveats
}

// Permits reports whether this resolved tuple permits the requested
// resource/ability/caveats, checked component by component.
func (r ResolvedCapability) Permits(resource capability.ResourceUri, ability capability.Ability, caveats capability.Caveats) bool {
	return r.Resource.Permits(resource) && r.Ability.Permits(ability) && r.Caveats.Permits(caveats)
}

// Authorization carries a UCAN alongside the capability set its proof
// chain resolved against a root authority. It's the handle a verifier
// holds on to once resolution succeeds, letting it answer repeated
// permits queries without re-walking the chain.
type Authorization struct {
	Ucan     *Ucan
	RootDID  string
	Resolved []ResolvedCapability
}

// NewAuthorization wraps a token with its already-resolved capability set.
func NewAuthorization(u *Ucan, rootDID string, resolved []ResolvedCapability) *Authorization {
	return &Authorization{Ucan: u, RootDID: rootDID, Resolved: resolved}
}

// Permits reports whether the resolved set contains some tuple that
// permits the requested resource/ability/caveats.
func (a *Authorization) Permits(resource capability.ResourceUri, ability capability.Ability, caveats capability.Caveats) bool {
	for _, r := range a.Resolved {
		if r.Permits(resource, ability, caveats) {
			return true
		}
	}
	return false
}
