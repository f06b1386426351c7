// Package ucan implements the UCAN token: JWT-style header/payload/
// signature encoding, local validation, and the building blocks the
// proof-chain resolver (pkg/resolve) walks.
package ucan

import (
	"encoding/json"

	"github.com/zeroutils-go/zeroucan/pkg/keys"
)

const tokenType = "JWT"

// Header is the fixed UCAN JWT-style header.
type Header struct {
	Alg keys.JwsAlgorithm `json:"alg"`
	Typ string            `json:"typ"`
}

// NewHeader builds the header for a token signed with alg.
func NewHeader(alg keys.JwsAlgorithm) Header {
	return Header{Alg: alg, Typ: tokenType}
}

func (h Header) marshal() ([]byte, error) {
	return json.Marshal(h)
}

func (h Header) validate() error {
	if h.Typ != tokenType {
		return &Error{Kind: ErrUnsupportedTokenType, Message: "typ must be JWT"}
	}
	if _, err := keys.ParseJwsAlgorithm(h.Alg.String()); err != nil {
		return &Error{Kind: ErrUnsupportedTokenType, Message: "unsupported alg", Cause: err}
	}
	return nil
}
