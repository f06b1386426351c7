package keys

// JwsAlgorithm parses and renders the JOSE "alg" header values this
// package's three curves correspond to.
type JwsAlgorithm string

const (
	EdDSA  JwsAlgorithm = "EdDSA"
	ES256  JwsAlgorithm = "ES256"
	ES256K JwsAlgorithm = "ES256K"
)

// String renders the algorithm's JOSE header value.
func (a JwsAlgorithm) String() string {
	return string(a)
}

// ParseJwsAlgorithm looks up a JOSE "alg" header value.
func ParseJwsAlgorithm(s string) (JwsAlgorithm, error) {
	switch s {
	case string(EdDSA), string(ES256), string(ES256K):
		return JwsAlgorithm(s), nil
	default:
		return "", &Error{Kind: ErrUnsupportedAlgorithm, Message: s}
	}
}

// KeyType returns the curve a JWS algorithm signs over.
func (a JwsAlgorithm) KeyType() (KeyType, error) {
	switch a {
	case EdDSA:
		return Ed25519, nil
	case ES256:
		return P256, nil
	case ES256K:
		return Secp256k1, nil
	default:
		return "", &Error{Kind: ErrUnsupportedAlgorithm, Message: string(a)}
	}
}
