package keys

import (
	"strings"

	"github.com/multiformats/go-multibase"
)

// DID is a decentralized identifier of the did:wk method: a multibase
// encoding of a multicodec-tagged public key, with an optional locator
// suffix used to resolve the DID document over the web.
type DID struct {
	PublicKey PublicKey
	Locator   *Locator
}

const didPrefix = "did:wk:"

// NewDID builds a DID from a public key and an optional locator.
func NewDID(pub PublicKey, locator *Locator) *DID {
	return &DID{PublicKey: pub, Locator: locator}
}

// String encodes the DID in its canonical wire form, using base64url
// multibase encoding of the multicodec-tagged public key.
func (d *DID) String() string {
	tag, err := multicodecTag(d.PublicKey.Type())
	if err != nil {
		return ""
	}
	raw := append(append([]byte{}, tag...), d.PublicKey.Bytes()...)
	enc, err := multibase.Encode(multibase.Base64url, raw)
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(didPrefix)
	b.WriteString(enc)
	if d.Locator != nil {
		b.WriteByte('@')
		b.WriteString(d.Locator.String())
	}
	return b.String()
}

// ParseDID parses a did:wk identifier, decoding the embedded public key and
// any locator suffix.
func ParseDID(s string) (*DID, error) {
	if !strings.HasPrefix(s, didPrefix) {
		return nil, &Error{Kind: ErrInvalidMethod, Message: s}
	}
	rest := s[len(didPrefix):]

	var keyPart, locatorPart string
	if idx := strings.IndexByte(rest, '@'); idx >= 0 {
		keyPart = rest[:idx]
		locatorPart = rest[idx+1:]
	} else {
		keyPart = rest
	}

	_, raw, err := multibase.Decode(keyPart)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidMethod, Message: "malformed multibase key", Cause: err}
	}

	kt, keyBytes, err := splitMulticodecTag(raw)
	if err != nil {
		return nil, err
	}

	pub, err := newPublicKey(kt, keyBytes)
	if err != nil {
		return nil, err
	}

	var locator *Locator
	if locatorPart != "" {
		locator, err = ParseLocator(locatorPart)
		if err != nil {
			return nil, err
		}
	}

	return &DID{PublicKey: pub, Locator: locator}, nil
}

// newPublicKey dispatches to the curve-specific public key constructor.
func newPublicKey(kt KeyType, raw []byte) (PublicKey, error) {
	switch kt {
	case Ed25519:
		return NewEd25519PublicKey(raw)
	case P256:
		return NewP256PublicKey(raw)
	case Secp256k1:
		return NewSecp256k1PublicKey(raw)
	default:
		return nil, &Error{Kind: ErrUnsupportedKeyType, Message: string(kt)}
	}
}

// ExpectKeyType returns an error unless the DID's public key matches kt.
func (d *DID) ExpectKeyType(kt KeyType) error {
	if d.PublicKey.Type() != kt {
		return &Error{Kind: ErrExpectedKeyType, Message: string(kt)}
	}
	return nil
}
