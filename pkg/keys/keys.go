// Package keys implements multibase/multicodec encoding of public keys, DID
// construction, and sign/verify over the three supported curves (Ed25519,
// NIST P-256, secp256k1), as required by the capability delegation model.
package keys

// KeyType identifies one of the three supported curves.
type KeyType string

const (
	// Ed25519 is the default, lowest-overhead signing curve.
	Ed25519 KeyType = "ed25519"

	// P256 is the NIST P-256 curve, signed with ES256.
	P256 KeyType = "p256"

	// Secp256k1 is the Bitcoin/Ethereum curve, signed with ES256K.
	Secp256k1 KeyType = "secp256k1"
)

// Alg returns the JOSE-style algorithm name a UCAN header must use for this
// key type.
func (kt KeyType) Alg() (string, error) {
	switch kt {
	case Ed25519:
		return "EdDSA", nil
	case P256:
		return "ES256", nil
	case Secp256k1:
		return "ES256K", nil
	default:
		return "", &Error{Kind: ErrUnsupportedKeyType, Message: string(kt)}
	}
}

// PublicKey is a verification key in one of the three supported curves.
type PublicKey interface {
	// Type reports which curve this key belongs to.
	Type() KeyType

	// Bytes returns the raw public key bytes (uncompressed SEC1 for P-256,
	// compressed for secp256k1) as they appear after the multicodec tag in
	// a `did:wk` identifier.
	Bytes() []byte

	// Verify checks a signature over data, returning an error if it does
	// not verify.
	Verify(data, signature []byte) error
}

// PrivateKey is a signing key paired with its public key.
type PrivateKey interface {
	// Public returns the corresponding public key.
	Public() PublicKey

	// Sign produces a signature over data under this key's curve and
	// algorithm.
	Sign(data []byte) ([]byte, error)
}

// Equal reports whether two public keys have the same type and bytes.
func Equal(a, b PublicKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	ab, bb := a.Bytes(), b.Bytes()
	if len(ab) != len(bb) {
		return false
	}
	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}
	return true
}
