package ucan

import (
	"github.com/google/uuid"

	"github.com/zeroutils-go/zeroucan/pkg/capability"
	"github.com/zeroutils-go/zeroucan/pkg/keys"
)

// ToWireCapabilities converts a parsed Capabilities set to the wire
// shape a payload's cap field uses.
func ToWireCapabilities(caps capability.Capabilities) WireCapabilities {
	out := make(WireCapabilities)
	for _, entry := range caps.Entries() {
		abilities := make(WireAbilities)
		for _, a := range entry.Abilities.AbilityEntries() {
			members := make([]WireCaveat, len(a.Caveats))
			for i, c := range a.Caveats {
				members[i] = WireCaveat(c)
			}
			abilities[a.Ability.String()] = members
		}
		out[entry.Resource.String()] = abilities
	}
	return out
}

// ParseCapabilities converts a payload's wire cap field back into a
// validated Capabilities set.
func ParseCapabilities(wire WireCapabilities) (capability.Capabilities, error) {
	table := make(map[string]map[string][]capability.Caveat, len(wire))
	for uri, abilities := range wire {
		abTable := make(map[string][]capability.Caveat, len(abilities))
		for path, members := range abilities {
			caveats := make([]capability.Caveat, len(members))
			for i, m := range members {
				caveats[i] = capability.Caveat(m)
			}
			abTable[path] = caveats
		}
		table[uri] = abTable
	}
	return capability.BuildCapabilities(table)
}

// Builder assembles and signs a UCAN token.
type Builder struct {
	issuer  keys.PrivateKey
	issuerD *keys.DID
	payload Payload
}

// NewBuilder starts a token build for the given issuer key, audience
// DID, and capabilities.
func NewBuilder(issuer keys.PrivateKey, issuerDID *keys.DID, audienceDID string, caps capability.Capabilities) (*Builder, error) {
	if _, err := issuer.Public().Type().Alg(); err != nil {
		return nil, &Error{Kind: ErrUnsupportedTokenType, Message: "unsupported issuer key type", Cause: err}
	}
	return &Builder{
		issuer:  issuer,
		issuerD: issuerDID,
		payload: NewPayload(issuerDID.String(), audienceDID, ToWireCapabilities(caps)),
	}, nil
}

// Expires sets the expiry in Unix seconds.
func (b *Builder) Expires(exp uint64) *Builder {
	b.payload = b.payload.WithExpiry(&exp)
	return b
}

// NotBefore sets the not-before time in Unix seconds.
func (b *Builder) NotBefore(nbf uint64) *Builder {
	b.payload = b.payload.WithNotBefore(nbf)
	return b
}

// Proofs attaches the given proof CID strings (already canonical multibase form).
func (b *Builder) Proofs(cids []string) *Builder {
	b.payload.Prf = append([]string{}, cids...)
	return b
}

// RandomNonce sets the nnc field to a freshly generated UUID, for callers
// that want replay resistance without managing their own nonce source.
func (b *Builder) RandomNonce() *Builder {
	b.payload = b.payload.WithNonce(uuid.NewString())
	return b
}

// Build signs and returns the finished token.
func (b *Builder) Build() (*Ucan, error) {
	alg, err := b.issuer.Public().Type().Alg()
	if err != nil {
		return nil, &Error{Kind: ErrUnsupportedTokenType, Message: "unsupported issuer key type", Cause: err}
	}
	jwsAlg, err := keys.ParseJwsAlgorithm(alg)
	if err != nil {
		return nil, &Error{Kind: ErrUnsupportedTokenType, Message: "unsupported alg", Cause: err}
	}
	u := New(NewHeader(jwsAlg), b.payload)
	if err := u.Sign(b.issuer); err != nil {
		return nil, err
	}
	return u, nil
}
