package ucan

import (
	"encoding/json"
	"sort"

	"github.com/zeroutils-go/zeroucan/pkg/cas"
)

const ucanVersion = "0.10.0"

// WireCaveat is one caveat object as it appears on the wire.
type WireCaveat map[string]any

// WireAbilities maps an ability path string to its caveat alternatives.
type WireAbilities map[string][]WireCaveat

// WireCapabilities maps a resource URI string to its abilities, as
// found in the payload's cap field.
type WireCapabilities map[string]WireAbilities

// Payload is the UCAN token's signed body. Field order matches the
// wire schema exactly (ucv, iss, aud, exp, nbf, nnc, fct, cap, prf);
// Go's encoding/json emits struct fields in declaration order, so this
// struct's layout IS the canonical field order.
type Payload struct {
	Ucv string           `json:"ucv"`
	Iss string           `json:"iss"`
	Aud string           `json:"aud"`
	Exp *uint64          `json:"exp"`
	Nbf *uint64          `json:"nbf,omitempty"`
	Nnc string           `json:"nnc,omitempty"`
	Fct map[string]any   `json:"fct,omitempty"`
	Cap WireCapabilities `json:"cap"`
	Prf []string         `json:"prf,omitempty"`
}

// NewPayload builds a payload with no expiry and the fixed ucv version;
// use WithExpiry/WithNotBefore/WithProofs/WithFacts/WithNonce to fill in
// the optional fields.
func NewPayload(iss, aud string, cap WireCapabilities) Payload {
	return Payload{Ucv: ucanVersion, Iss: iss, Aud: aud, Cap: cap}
}

// WithExpiry sets the expiry in Unix seconds; nil means no expiry.
func (p Payload) WithExpiry(exp *uint64) Payload {
	p.Exp = exp
	return p
}

// WithNotBefore sets the not-before time in Unix seconds.
func (p Payload) WithNotBefore(nbf uint64) Payload {
	p.Nbf = &nbf
	return p
}

// WithNonce sets the nnc field.
func (p Payload) WithNonce(nnc string) Payload {
	p.Nnc = nnc
	return p
}

// WithFacts sets the fct field.
func (p Payload) WithFacts(fct map[string]any) Payload {
	p.Fct = fct
	return p
}

// WithProofs sets the prf field to the given CIDs, sorted to their
// canonical multibase string form as the wire format requires.
func (p Payload) WithProofs(cids []cas.CID) Payload {
	strs := make([]string, len(cids))
	for i, c := range cids {
		strs[i] = c.String()
	}
	sort.Strings(strs)
	p.Prf = strs
	return p
}

func (p Payload) marshal() ([]byte, error) {
	return json.Marshal(p)
}

// ProofCIDs parses the prf field back into CIDs.
func (p Payload) ProofCIDs() ([]cas.CID, error) {
	out := make([]cas.CID, len(p.Prf))
	for i, s := range p.Prf {
		c, err := cas.ParseCID(s)
		if err != nil {
			return nil, &Error{Kind: ErrUnableToParse, Message: "invalid prf CID", Cause: err}
		}
		out[i] = c
	}
	return out, nil
}
