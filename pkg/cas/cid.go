// Package cas implements the content-addressed store: CIDs over a fixed
// Blake3-256 hash, a fixed-size chunker, an in-memory reference-counted
// block store with a dual-store composite, and a flat Merkle layout with
// a seekable byte reader.
package cas

import (
	cid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"lukechampine.com/blake3"
)

// Codec tags for the structured and raw block kinds this store supports.
const (
	Raw     = cid.Raw         // 0x55
	DagCbor = cid.DagCBOR     // 0x71
	DagJSON = cid.DagJSON     // 0x0129
	DagPb   = cid.DagProtobuf // 0x70
)

// mhBlake3 is the multicodec code for the Blake3 hash function.
const mhBlake3 = 0x1e

// CID wraps github.com/ipfs/go-cid's Cid with the fixed-hash contract this
// store always uses: version 1, Blake3-256 digest.
type CID struct {
	inner cid.Cid
}

// MakeCID produces a version-1 CID over bytes, tagged with codec, using a
// Blake3-256 digest. The hash is fixed at the reference-design default.
func MakeCID(codec uint64, data []byte) CID {
	digest := blake3.Sum256(data)
	hash, err := mh.Encode(digest[:], mhBlake3)
	if err != nil {
		// mh.Encode only fails for an unregistered/invalid code; mhBlake3
		// is a fixed constant, so this path is unreachable in practice.
		panic(err)
	}
	return CID{inner: cid.NewCidV1(codec, hash)}
}

// Codec returns the CID's codec tag.
func (c CID) Codec() uint64 {
	return c.inner.Type()
}

// Bytes returns the CID's binary form.
func (c CID) Bytes() []byte {
	return c.inner.Bytes()
}

// String renders the CID in its canonical multibase form (base32, lowercase,
// matching the `b...` prefix convention used throughout the pack).
func (c CID) String() string {
	return c.inner.String()
}

// Equals reports whether two CIDs are identical.
func (c CID) Equals(other CID) bool {
	return c.inner.Equals(other.inner)
}

// IsZero reports whether c is the zero value (no CID set).
func (c CID) IsZero() bool {
	return !c.inner.Defined()
}

// ParseCID decodes a CID from its canonical multibase string form.
func ParseCID(s string) (CID, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return CID{}, &Error{Kind: ErrCIDInvalid, Message: s, Cause: err}
	}
	return CID{inner: c}, nil
}

// CIDFromBytes decodes a CID from its binary form.
func CIDFromBytes(data []byte) (CID, error) {
	c, err := cid.Cast(data)
	if err != nil {
		return CID{}, &Error{Kind: ErrCIDInvalid, Message: "malformed CID bytes", Cause: err}
	}
	return CID{inner: c}, nil
}

// MarshalText implements encoding.TextMarshaler so a CID serializes as its
// canonical multibase string in JSON.
func (c CID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CID) UnmarshalText(text []byte) error {
	parsed, err := ParseCID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
