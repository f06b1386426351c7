package keys

import (
	"crypto/ed25519"
	"crypto/rand"
)

// ed25519PublicKey implements PublicKey over stdlib crypto/ed25519.
type ed25519PublicKey struct {
	key ed25519.PublicKey
}

// ed25519PrivateKey implements PrivateKey over stdlib crypto/ed25519.
type ed25519PrivateKey struct {
	key ed25519.PrivateKey
}

// GenerateEd25519 creates a fresh Ed25519 key pair.
func GenerateEd25519() (PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, &Error{Kind: ErrKeyDecode, Message: "ed25519 key generation failed", Cause: err}
	}
	return &ed25519PrivateKey{key: priv}, nil
}

// NewEd25519PublicKey wraps raw Ed25519 public key bytes.
func NewEd25519PublicKey(raw []byte) (PublicKey, error) {
	if len(raw) != ed25519.PublicKeySize {
		return nil, &Error{Kind: ErrKeyDecode, Message: "ed25519 public key must be 32 bytes"}
	}
	buf := make([]byte, ed25519.PublicKeySize)
	copy(buf, raw)
	return &ed25519PublicKey{key: ed25519.PublicKey(buf)}, nil
}

func (k *ed25519PublicKey) Type() KeyType { return Ed25519 }

func (k *ed25519PublicKey) Bytes() []byte {
	out := make([]byte, len(k.key))
	copy(out, k.key)
	return out
}

func (k *ed25519PublicKey) Verify(data, signature []byte) error {
	if !ed25519.Verify(k.key, data, signature) {
		return &Error{Kind: ErrInvalidSignature, Message: "ed25519 signature verification failed"}
	}
	return nil
}

func (k *ed25519PrivateKey) Public() PublicKey {
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, k.key.Public().(ed25519.PublicKey))
	return &ed25519PublicKey{key: pub}
}

func (k *ed25519PrivateKey) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(k.key, data), nil
}
