package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
)

// p256PublicKey implements PublicKey over stdlib crypto/ecdsa on the P-256
// curve. No suitable third-party P-256 library surfaced anywhere in the
// example pack (the decred secp256k1 package only covers its own curve), so
// this component is one of the few built directly on the standard library.
type p256PublicKey struct {
	key *ecdsa.PublicKey
}

// p256PrivateKey implements PrivateKey over stdlib crypto/ecdsa.
type p256PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenerateP256 creates a fresh P-256 key pair.
func GenerateP256() (PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, &Error{Kind: ErrKeyDecode, Message: "p256 key generation failed", Cause: err}
	}
	return &p256PrivateKey{key: priv}, nil
}

// NewP256PublicKey decodes an uncompressed SEC1 P-256 public key (0x04
// prefix followed by 32-byte X and 32-byte Y).
func NewP256PublicKey(raw []byte) (PublicKey, error) {
	curve := elliptic.P256()
	x, y := elliptic.Unmarshal(curve, raw)
	if x == nil {
		return nil, &Error{Kind: ErrKeyDecode, Message: "malformed p256 public key"}
	}
	return &p256PublicKey{key: &ecdsa.PublicKey{Curve: curve, X: x, Y: y}}, nil
}

func (k *p256PublicKey) Type() KeyType { return P256 }

func (k *p256PublicKey) Bytes() []byte {
	return elliptic.Marshal(k.key.Curve, k.key.X, k.key.Y)
}

func (k *p256PublicKey) Verify(data, signature []byte) error {
	if len(signature) != 64 {
		return &Error{Kind: ErrInvalidSignature, Message: "p256 signature must be 64 bytes (r||s)"}
	}
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	digest := sha256.Sum256(data)
	if !ecdsa.Verify(k.key, digest[:], r, s) {
		return &Error{Kind: ErrInvalidSignature, Message: "p256 signature verification failed"}
	}
	return nil
}

func (k *p256PrivateKey) Public() PublicKey {
	pub := k.key.PublicKey
	return &p256PublicKey{key: &pub}
}

func (k *p256PrivateKey) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	r, s, err := ecdsa.Sign(rand.Reader, k.key, digest[:])
	if err != nil {
		return nil, &Error{Kind: ErrInvalidSignature, Message: "p256 signing failed", Cause: err}
	}
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}
