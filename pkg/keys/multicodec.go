package keys

import (
	"github.com/multiformats/go-varint"
)

// Multicodec tags disambiguating the key type embedded in a did:wk
// identifier, per the wire format table.
// Multicodec values chosen so their varint encoding matches the wire-level
// byte pairs named in the spec exactly: Ed25519 -> {0xED,0x01}, P-256 ->
// {0x80,0x1A}, secp256k1 -> {0xE7,0x01}.
const (
	codecEd25519   = 0xED
	codecP256      = 0x0D00
	codecSecp256k1 = 0xE7
)

// multicodecTag returns the varint-encoded multicodec prefix for a key type.
func multicodecTag(kt KeyType) ([]byte, error) {
	var code uint64
	switch kt {
	case Ed25519:
		code = codecEd25519
	case P256:
		code = codecP256
	case Secp256k1:
		code = codecSecp256k1
	default:
		return nil, &Error{Kind: ErrUnsupportedKeyType, Message: string(kt)}
	}
	return varint.ToUvarint(code), nil
}

// splitMulticodecTag reads a varint multicodec tag off the front of data and
// returns the matching key type plus the remaining bytes.
func splitMulticodecTag(data []byte) (KeyType, []byte, error) {
	code, n, err := varint.FromUvarint(data)
	if err != nil {
		return "", nil, &Error{Kind: ErrUnsupportedKeyType, Message: "malformed multicodec tag", Cause: err}
	}
	var kt KeyType
	switch code {
	case codecEd25519:
		kt = Ed25519
	case codecP256:
		kt = P256
	case codecSecp256k1:
		kt = Secp256k1
	default:
		return "", nil, &Error{Kind: ErrUnsupportedKeyType, Message: "unrecognized multicodec tag"}
	}
	return kt, data[n:], nil
}
