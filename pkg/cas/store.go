package cas

import "io"

// Store is the block store contract: put/get raw and structured node
// blocks keyed by CID, plus a streaming put/get over a layout.
type Store interface {
	// PutRawBlock stores an opaque byte block and returns its CID.
	// Returns RawBlockTooLarge if data exceeds RawBlockMaxSize.
	PutRawBlock(data []byte) (CID, error)

	// GetRawBlock fetches a raw block. Returns BlockNotFound if absent,
	// UnexpectedBlockCodec if the CID names a non-Raw codec.
	GetRawBlock(c CID) ([]byte, error)

	// PutNode CBOR-encodes and stores a Merkle node, incrementing the
	// refcount of every child CID it references.
	PutNode(node *MerkleNode) (CID, error)

	// GetNode fetches and decodes a Merkle node. Returns BlockNotFound if
	// absent, UnexpectedBlockCodec if the CID names a non-DagCbor codec.
	GetNode(c CID) (*MerkleNode, error)

	// PutBytes chunks r through a layout and stores the resulting leaves
	// and node, returning the root CID.
	PutBytes(r io.Reader) (CID, error)

	// GetBytes returns a reader over the bytes rooted at c.
	GetBytes(c CID) (io.Reader, error)

	// Has reports whether a block for c is present.
	Has(c CID) bool

	// SupportedCodecs reports the codec tags this store accepts.
	SupportedCodecs() map[uint64]bool

	// RawBlockMaxSize returns the raw block size limit, or (0, false) if
	// unbounded.
	RawBlockMaxSize() (int, bool)

	// NodeBlockMaxSize returns the node block size limit, or (0, false) if
	// unbounded.
	NodeBlockMaxSize() (int, bool)
}

// SeekableStore is implemented by stores whose GetBytes reader can also
// support Seek, via the flat layout's seekable reader.
type SeekableStore interface {
	Store

	// GetBytesSeeker returns a seekable reader over the bytes rooted at c.
	GetBytesSeeker(c CID) (io.ReadSeeker, error)
}
