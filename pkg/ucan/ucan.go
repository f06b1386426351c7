package ucan

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/zeroutils-go/zeroucan/pkg/keys"
)

// Ucan is a parsed, possibly-signed UCAN token.
type Ucan struct {
	Header    Header
	Payload   Payload
	Signature []byte
}

// New builds an unsigned token; call Sign to produce the wire form.
func New(header Header, payload Payload) *Ucan {
	return &Ucan{Header: header, Payload: payload}
}

func encodeSegment(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &Error{Kind: ErrUnableToParse, Message: "encode failed", Cause: err}
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// signingInput is the ASCII bytes signed over: b64url(header) "." b64url(payload).
func (u *Ucan) signingInput() (string, error) {
	h, err := encodeSegment(u.Header)
	if err != nil {
		return "", err
	}
	p, err := encodeSegment(u.Payload)
	if err != nil {
		return "", err
	}
	return h + "." + p, nil
}

// Sign computes the token's signature with priv and stores it on u,
// leaving the token in its signed, encodable state. priv's key type must
// match u.Header.Alg.
func (u *Ucan) Sign(priv keys.PrivateKey) error {
	input, err := u.signingInput()
	if err != nil {
		return err
	}
	sig, err := priv.Sign([]byte(input))
	if err != nil {
		return &Error{Kind: ErrSignatureInvalid, Message: "signing failed", Cause: err}
	}
	u.Signature = sig
	return nil
}

// Encode renders the token to its b64url.b64url.b64url wire string. An
// unsigned token (no Signature set) encodes with a trailing empty
// segment, matching UCANs that carry proofs alone.
func (u *Ucan) Encode() (string, error) {
	input, err := u.signingInput()
	if err != nil {
		return "", err
	}
	return input + "." + base64.RawURLEncoding.EncodeToString(u.Signature), nil
}

// Decode parses a wire-format token without verifying its signature.
func Decode(s string) (*Ucan, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, &Error{Kind: ErrUnableToParse, Message: "token must have 3 dot-separated segments"}
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, &Error{Kind: ErrUnableToParse, Message: "invalid header encoding", Cause: err}
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, &Error{Kind: ErrUnableToParse, Message: "invalid header JSON", Cause: err}
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, &Error{Kind: ErrUnableToParse, Message: "invalid payload encoding", Cause: err}
	}
	var payload Payload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, &Error{Kind: ErrUnableToParse, Message: "invalid payload JSON", Cause: err}
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, &Error{Kind: ErrUnableToParse, Message: "invalid signature encoding", Cause: err}
	}

	return &Ucan{Header: header, Payload: payload, Signature: sig}, nil
}

// Verify checks that the token's signature is valid for its issuer's
// embedded public key and that alg matches the key's type.
func (u *Ucan) Verify() error {
	if err := u.Header.validate(); err != nil {
		return err
	}

	did, err := keys.ParseDID(u.Payload.Iss)
	if err != nil {
		return &Error{Kind: ErrInvalidMethod, Message: "invalid issuer DID", Cause: err}
	}

	wantKeyType, err := u.Header.Alg.KeyType()
	if err != nil {
		return &Error{Kind: ErrUnsupportedTokenType, Message: "unsupported alg", Cause: err}
	}
	if err := did.ExpectKeyType(wantKeyType); err != nil {
		return &Error{Kind: ErrExpectedKeyType, Message: "issuer key type does not match alg", Cause: err}
	}

	input, err := u.signingInput()
	if err != nil {
		return err
	}
	if err := did.PublicKey.Verify([]byte(input), u.Signature); err != nil {
		return &Error{Kind: ErrSignatureInvalid, Message: "signature verification failed", Cause: err}
	}
	return nil
}

// Validate performs the full local (no proof walking) validation from
// §4.6: typ/alg, iss/aud parse as DIDs, exp/nbf against now, and
// signature verification.
func (u *Ucan) Validate(now uint64) error {
	if _, err := keys.ParseDID(u.Payload.Aud); err != nil {
		return &Error{Kind: ErrInvalidMethod, Message: "invalid audience DID", Cause: err}
	}
	if u.Payload.Exp != nil && *u.Payload.Exp <= now {
		return &Error{Kind: ErrExpired, Message: "token expired"}
	}
	if u.Payload.Nbf != nil && *u.Payload.Nbf > now {
		return &Error{Kind: ErrNotYetValid, Message: "token not yet valid"}
	}
	return u.Verify()
}
