package cas

import (
	"io"
)

// FlatLayout is the reference layout: a single Merkle node whose children
// are the leaves in input order.
type FlatLayout struct{}

// Organize writes each chunk as a raw leaf block in order, then a single
// node block listing them, and returns the node's CID.
func (FlatLayout) Organize(store Store, chunker Chunker) (CID, error) {
	var children []NodeChildRef
	var total uint64

	for {
		chunk, err := chunker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return CID{}, err
		}
		c, err := store.PutRawBlock(chunk)
		if err != nil {
			return CID{}, err
		}
		children = append(children, NodeChildRef{CID: c, Size: uint64(len(chunk))})
		total += uint64(len(chunk))
	}

	node := &MerkleNode{Size: total, Children: children}
	return store.PutNode(node)
}

// Retrieve returns a non-seekable reader over the bytes rooted at root,
// reading leaves in order as they're needed.
func (FlatLayout) Retrieve(store Store, root CID) (io.Reader, error) {
	node, err := store.GetNode(root)
	if err != nil {
		return nil, err
	}
	if len(node.Children) == 0 {
		return nil, &Error{Kind: ErrNoLeafBlock, Message: "node has no children", CID: &root}
	}
	return &flatReader{store: store, node: node}, nil
}

// flatReader reconstructs bytes from a flat node's leaves in order,
// fetching one leaf at a time.
type flatReader struct {
	store   Store
	node    *MerkleNode
	index   int
	leaf    []byte
	leafOff int
}

func (r *flatReader) Read(p []byte) (int, error) {
	for r.leafOff >= len(r.leaf) {
		if r.index >= len(r.node.Children) {
			return 0, io.EOF
		}
		leaf, err := r.store.GetRawBlock(r.node.Children[r.index].CID)
		if err != nil {
			return 0, err
		}
		r.leaf = leaf
		r.leafOff = 0
		r.index++
	}
	n := copy(p, r.leaf[r.leafOff:])
	r.leafOff += n
	return n, nil
}
