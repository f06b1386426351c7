package keys

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// secp256k1PublicKey implements PublicKey over the decred secp256k1
// package, the curve used by ES256K.
type secp256k1PublicKey struct {
	key *secp256k1.PublicKey
}

// secp256k1PrivateKey implements PrivateKey over the decred secp256k1
// package.
type secp256k1PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateSecp256k1 creates a fresh secp256k1 key pair.
func GenerateSecp256k1() (PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKeyFromRand(rand.Reader)
	if err != nil {
		return nil, &Error{Kind: ErrKeyDecode, Message: "secp256k1 key generation failed", Cause: err}
	}
	return &secp256k1PrivateKey{key: priv}, nil
}

// NewSecp256k1PublicKey decodes a compressed (33-byte) secp256k1 public key.
func NewSecp256k1PublicKey(raw []byte) (PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, &Error{Kind: ErrKeyDecode, Message: "malformed secp256k1 public key", Cause: err}
	}
	return &secp256k1PublicKey{key: pub}, nil
}

func (k *secp256k1PublicKey) Type() KeyType { return Secp256k1 }

func (k *secp256k1PublicKey) Bytes() []byte {
	return k.key.SerializeCompressed()
}

func (k *secp256k1PublicKey) Verify(data, signature []byte) error {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return &Error{Kind: ErrInvalidSignature, Message: "malformed secp256k1 signature", Cause: err}
	}
	digest := sha256.Sum256(data)
	if !sig.Verify(digest[:], k.key) {
		return &Error{Kind: ErrInvalidSignature, Message: "secp256k1 signature verification failed"}
	}
	return nil
}

func (k *secp256k1PrivateKey) Public() PublicKey {
	return &secp256k1PublicKey{key: k.key.PubKey()}
}

func (k *secp256k1PrivateKey) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig := ecdsa.Sign(k.key, digest[:])
	return sig.Serialize(), nil
}
