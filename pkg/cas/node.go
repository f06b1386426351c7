package cas

import (
	"github.com/zeroutils-go/zeroucan/pkg/codec/cborcanon"
)

// MerkleNode is the structural overlay the flat (and future balanced/
// trickle) layouts emit: a total size plus an ordered list of children.
// Purely structural: children are usually raw leaves, but may be inner
// nodes in richer layouts.
type MerkleNode struct {
	Size     uint64         `cbor:"size"`
	Children []NodeChildRef `cbor:"children"`
}

// NodeChildRef is one (CID, size) pair referenced by a Merkle node.
type NodeChildRef struct {
	CID  CID
	Size uint64
}

// cborNode is the wire shape MerkleNode encodes to/from: CIDs as their
// binary form, since DAG-CBOR has no native CID type in this encoder.
type cborNode struct {
	Size     uint64          `cbor:"size"`
	Children []cborChildPair `cbor:"children"`
}

type cborChildPair struct {
	CID  []byte `cbor:"cid"`
	Size uint64 `cbor:"size"`
}

// MarshalCBOR implements canonical DAG-CBOR encoding for a Merkle node.
func (n *MerkleNode) MarshalCBOR() ([]byte, error) {
	refs := make([]cborChildPair, len(n.Children))
	for i, ch := range n.Children {
		refs[i] = cborChildPair{CID: ch.CID.Bytes(), Size: ch.Size}
	}
	return cborcanon.Marshal(&cborNode{Size: n.Size, Children: refs})
}

// UnmarshalCBOR decodes a Merkle node from its DAG-CBOR form.
func (n *MerkleNode) UnmarshalCBOR(data []byte) error {
	var wire cborNode
	if err := cborcanon.Unmarshal(data, &wire); err != nil {
		return err
	}
	children := make([]NodeChildRef, len(wire.Children))
	for i, ref := range wire.Children {
		c, err := CIDFromBytes(ref.CID)
		if err != nil {
			return err
		}
		children[i] = NodeChildRef{CID: c, Size: ref.Size}
	}
	n.Size = wire.Size
	n.Children = children
	return nil
}

// References returns every CID this node points to, for refcounting on
// insert (the store's caller-supplied IpldReferences iterator).
func (n *MerkleNode) References() []CID {
	out := make([]CID, len(n.Children))
	for i, ch := range n.Children {
		out[i] = ch.CID
	}
	return out
}
