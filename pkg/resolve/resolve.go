// Package resolve implements proof-chain resolution: walking a UCAN's
// prf set back to a root authority and producing the set of ground
// capabilities the chain actually delegates.
package resolve

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zeroutils-go/zeroucan/pkg/cas"
	"github.com/zeroutils-go/zeroucan/pkg/capability"
	"github.com/zeroutils-go/zeroucan/pkg/keys"
	"github.com/zeroutils-go/zeroucan/pkg/ucan"
)

// RootAuthority is the DID and capabilities definition a proof chain
// must ultimately be grounded in.
type RootAuthority struct {
	DID        *keys.DID
	Definition *capability.CapabilitiesDefinition
}

// CapabilityTuple is a non-ucan resource paired with a requested
// ability and caveats.
type CapabilityTuple struct {
	Resource capability.ResourceUri
	Ability  capability.Ability
	Caveats  capability.Caveats
}

// UnresolvedUcanWithCid is what ucan:<cid> (CID set) and ucan:./* (CID
// nil, meaning "any proof of the current token") map to.
type UnresolvedUcanWithCid struct {
	CID       *cas.CID
	Abilities *capability.Abilities
}

// UnresolvedUcanWithAud is what ucan://<did>/* and ucan://<did>/<scheme>
// map to: capabilities attributed to any UCAN with the given audience.
type UnresolvedUcanWithAud struct {
	DID       string
	Scheme    *string
	Abilities *capability.Abilities
}

// UnresolvedCapWithRootIss is a non-ucan capability tuple waiting to be
// grounded at the root authority's issuer key.
type UnresolvedCapWithRootIss struct {
	Tuple CapabilityTuple
}

// Resolved is one element of a resolution result: either a final,
// grounded capability tuple, or a marker that the ucan:* transient form
// delegated all of an issuer's capabilities.
type Resolved struct {
	Tuple         *CapabilityTuple
	TransientDID  string
}

// Resolve walks ucan's proof chain back to authority, producing the set
// of resolved capability tuples the chain supports, per §4.7's
// recursive algorithm. ucan's own capabilities seed the walk: they are
// mapped as though a (nonexistent) child had already requested them,
// then validated back up through ucan's proofs to authority.
func Resolve(u *ucan.Ucan, authority RootAuthority, store Store, now uint64) ([]Resolved, error) {
	if err := u.Validate(now); err != nil {
		return nil, err
	}
	caps, err := ucan.ParseCapabilities(u.Payload.Cap)
	if err != nil {
		return nil, err
	}

	cids, auds, rootIss, resolved := mapCapabilities(u, caps)
	cache := NewProofCache()
	out, err := finalizeAndDescend(u, caps, cids, auds, rootIss, resolved, authority, nil, store, cache, now)
	if err != nil {
		if rerr, ok := err.(*Error); ok {
			logrus.WithFields(logrus.Fields{"kind": rerr.Kind, "proof_trace": rerr.Trace.String()}).Warn("resolve: attenuation failed")
		}
		return nil, err
	}
	logrus.WithField("resolved", len(out)).Debug("resolve: proof chain resolved")
	return out, nil
}

func resolveCapabilities(
	u *ucan.Ucan,
	unresolvedCids []UnresolvedUcanWithCid,
	unresolvedAuds []UnresolvedUcanWithAud,
	unresolvedRootIss []UnresolvedCapWithRootIss,
	authority RootAuthority,
	trace Trace,
	store Store,
	cache *ProofCache,
	now uint64,
) ([]Resolved, error) {
	if err := u.Validate(now); err != nil {
		return nil, err
	}

	caps, err := ucan.ParseCapabilities(u.Payload.Cap)
	if err != nil {
		return nil, err
	}

	for _, c := range unresolvedCids {
		if err := validateAttenuationWithCid(caps, c, trace); err != nil {
			return nil, err
		}
	}

	var audsValidated, audsUnvalidated []UnresolvedUcanWithAud
	for _, a := range unresolvedAuds {
		if validateAttenuationWithAud(u, caps, a, trace) == nil {
			audsValidated = append(audsValidated, a)
		} else {
			audsUnvalidated = append(audsUnvalidated, a)
		}
	}

	var newCids []UnresolvedUcanWithCid
	var newAuds []UnresolvedUcanWithAud
	var newRootIss []UnresolvedCapWithRootIss
	var resolved []Resolved

	if len(unresolvedCids)+len(audsValidated) > 0 {
		mc, ma, mr, mres := mapCapabilities(u, caps)
		newCids = mc
		newAuds = append(ma, audsUnvalidated...)
		newRootIss = append(mr, unresolvedRootIss...)
		resolved = mres
	} else {
		newAuds = audsUnvalidated
		newRootIss = unresolvedRootIss
	}

	return finalizeAndDescend(u, caps, newCids, newAuds, newRootIss, resolved, authority, trace, store, cache, now)
}

// finalizeAndDescend resolves every newRootIss entry that can be
// grounded directly at u's level, then either returns what's resolved
// or walks u's proofs to carry the rest further up the chain. Shared
// between Resolve's seeding step and resolveCapabilities' recursive
// step, which differ only in how the initial unresolved sets are
// produced.
func finalizeAndDescend(
	u *ucan.Ucan,
	caps capability.Capabilities,
	newCids []UnresolvedUcanWithCid,
	newAuds []UnresolvedUcanWithAud,
	newRootIss []UnresolvedCapWithRootIss,
	resolved []Resolved,
	authority RootAuthority,
	trace Trace,
	store Store,
	cache *ProofCache,
	now uint64,
) ([]Resolved, error) {
	var stillUnresolvedRootIss []UnresolvedCapWithRootIss
	for _, ri := range newRootIss {
		if err := validateAttenuationWithRootIss(u, caps, authority, ri, trace); err == nil {
			t := ri.Tuple
			resolved = append(resolved, Resolved{Tuple: &t})
		} else {
			stillUnresolvedRootIss = append(stillUnresolvedRootIss, ri)
		}
	}
	newRootIss = stillUnresolvedRootIss

	if len(newCids) == 0 && len(newAuds) == 0 && len(newRootIss) == 0 {
		return resolved, nil
	}

	if len(u.Payload.Prf) == 0 {
		return nil, &Error{Kind: ErrUnresolvedCapabilities, Message: "proof chain exhausted with unresolved capabilities remaining", Trace: trace}
	}

	prfCids, err := u.Payload.ProofCIDs()
	if err != nil {
		return nil, err
	}
	prfSet := make(map[string]bool, len(prfCids))
	for _, c := range prfCids {
		prfSet[c.String()] = true
	}

	unresolvedCidSet := make(map[string]bool)
	for _, c := range newCids {
		if c.CID != nil {
			if !prfSet[c.CID.String()] {
				return nil, &Error{Kind: ErrProofCidNotFound, Message: c.CID.String(), Trace: trace}
			}
			unresolvedCidSet[c.CID.String()] = true
		}
	}

	shouldFilterProofs := len(newAuds) == 0 && len(newRootIss) == 0 && len(newCids) == len(unresolvedCidSet)

	for _, proofCID := range prfCids {
		if shouldFilterProofs && !unresolvedCidSet[proofCID.String()] {
			continue
		}
		if traceContains(trace, proofCID) {
			continue
		}

		child, err := cache.Get(proofCID, store)
		if err != nil {
			return nil, err
		}

		childTrace := append(Trace{proofCID}, trace...)

		if err := validateTimeAlignment(u, child, childTrace); err != nil {
			return nil, err
		}

		result, err := resolveCapabilities(child, newCids, newAuds, newRootIss, authority, childTrace, store, cache, now)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, result...)
	}

	return resolved, nil
}

// validateTimeAlignment enforces spec §4.7's time alignment rule: a
// proof's exp (if set) must not exceed the parent's exp, and its nbf
// (if set) must not precede the parent's nbf. parent is the UCAN
// walking into proof as one of its prf entries.
func validateTimeAlignment(parent, proof *ucan.Ucan, trace Trace) error {
	if proof.Payload.Exp != nil && parent.Payload.Exp != nil && *proof.Payload.Exp > *parent.Payload.Exp {
		return &Error{Kind: ErrProofTimeMisaligned, Message: "proof exp exceeds parent exp", Trace: trace}
	}
	if proof.Payload.Nbf != nil && parent.Payload.Nbf != nil && *proof.Payload.Nbf < *parent.Payload.Nbf {
		return &Error{Kind: ErrProofTimeMisaligned, Message: "proof nbf precedes parent nbf", Trace: trace}
	}
	return nil
}

func traceContains(trace Trace, c cas.CID) bool {
	for _, t := range trace {
		if t.Equals(c) {
			return true
		}
	}
	return false
}

func abilitiesPermitted(caps capability.Capabilities, abilities *capability.Abilities) bool {
	if abilities == nil {
		return true
	}
	for _, want := range abilities.AbilityEntries() {
		if want.Ability.IsUcanStar() {
			// ucan/* is the sentinel for "forward whatever this proof
			// grants"; it names no concrete ability to match against
			// the parent's own cap entries, so it's never blocked here.
			// The real check happens later, in the root-issuer grant
			// itself matching against the proof's actual resource caps.
			continue
		}
		found := false
		for _, entry := range caps.Entries() {
			for _, have := range entry.Abilities.AbilityEntries() {
				if have.Ability.Permits(want.Ability) && have.Caveats.Permits(want.Caveats) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func validateAttenuationWithCid(caps capability.Capabilities, unresolved UnresolvedUcanWithCid, trace Trace) error {
	if !abilitiesPermitted(caps, unresolved.Abilities) {
		return &Error{Kind: ErrAbilitiesNotPermittedInScope, Message: "delegated ability not held by parent", Trace: trace}
	}
	return nil
}

func validateAttenuationWithAud(u *ucan.Ucan, caps capability.Capabilities, unresolved UnresolvedUcanWithAud, trace Trace) error {
	if u.Payload.Aud != unresolved.DID {
		return &Error{Kind: ErrAudienceDidNotMatch, Message: unresolved.DID, Trace: trace}
	}

	if unresolved.Scheme != nil {
		matched := false
		for _, entry := range caps.Entries() {
			if entry.Resource.IsUcanReference() {
				continue
			}
			scheme, _, ok := strings.Cut(entry.Resource.String(), "://")
			if ok && strings.EqualFold(scheme, *unresolved.Scheme) {
				matched = true
				break
			}
		}
		if !matched {
			return &Error{Kind: ErrSchemeNotPermittedInScope, Message: *unresolved.Scheme, Trace: trace}
		}
	}

	if !abilitiesPermitted(caps, unresolved.Abilities) {
		return &Error{Kind: ErrAbilitiesNotPermittedInScope, Message: "delegated ability not held by parent", Trace: trace}
	}
	return nil
}

func validateAttenuationWithRootIss(u *ucan.Ucan, caps capability.Capabilities, authority RootAuthority, unresolved UnresolvedCapWithRootIss, trace Trace) error {
	t := unresolved.Tuple
	if _, _, _, ok := caps.Permits(t.Resource, t.Ability, t.Caveats); !ok {
		return &Error{Kind: ErrCapabilityNotPermittedInScope, Message: t.Resource.String(), Trace: trace}
	}
	if u.Payload.Iss != authority.DID.String() {
		return &Error{Kind: ErrCapabilityNotDelegatedByRootIss, Message: t.Resource.String(), Trace: trace}
	}
	return nil
}

// mapCapabilities splits a UCAN's own cap entries into the unresolved
// forms that get passed on to its proofs, plus any capabilities that
// resolve immediately (the ucan:* transient marker).
func mapCapabilities(u *ucan.Ucan, caps capability.Capabilities) ([]UnresolvedUcanWithCid, []UnresolvedUcanWithAud, []UnresolvedCapWithRootIss, []Resolved) {
	var cids []UnresolvedUcanWithCid
	var auds []UnresolvedUcanWithAud
	var rootIss []UnresolvedCapWithRootIss
	var resolved []Resolved

	for _, entry := range caps.Entries() {
		abilities := entry.Abilities
		if entry.Resource.IsUcanReference() {
			ref := entry.Resource.Reference()
			switch ref.Form {
			case capability.ProofByAudience:
				auds = append(auds, UnresolvedUcanWithAud{DID: ref.DID, Abilities: &abilities})
			case capability.ProofAllTransient:
				auds = append(auds, UnresolvedUcanWithAud{DID: u.Payload.Iss, Abilities: &abilities})
				resolved = append(resolved, Resolved{TransientDID: u.Payload.Iss})
			case capability.ProofByAudienceScheme:
				scheme := ref.Scheme
				auds = append(auds, UnresolvedUcanWithAud{DID: ref.DID, Scheme: &scheme, Abilities: &abilities})
			case capability.ProofAllCurrent:
				cids = append(cids, UnresolvedUcanWithCid{CID: nil, Abilities: &abilities})
			case capability.ProofByCID:
				c, err := cas.CIDFromBytes(ref.CID.Bytes())
				if err != nil {
					continue
				}
				cids = append(cids, UnresolvedUcanWithCid{CID: &c, Abilities: &abilities})
			}
			continue
		}

		for _, a := range abilities.AbilityEntries() {
			rootIss = append(rootIss, UnresolvedCapWithRootIss{
				Tuple: CapabilityTuple{Resource: entry.Resource, Ability: a.Ability, Caveats: a.Caveats},
			})
		}
	}

	return cids, auds, rootIss, resolved
}
