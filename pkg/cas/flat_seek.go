package cas

import (
	"io"
)

// FlatSeekReader is the flat layout's seekable reader. State:
// (node, store, byteCursor, chunkIndex, chunkDistance, active leaf).
// Invariant: chunkDistance == sum of len(children[0:chunkIndex]);
// byteCursor is in [chunkDistance, chunkDistance+len(children[chunkIndex]))
// unless byteCursor == node.Size (EOF).
type FlatSeekReader struct {
	store Store
	node  *MerkleNode

	byteCursor    int64
	chunkIndex    int
	chunkDistance int64

	leaf    []byte
	leafSet bool
}

// NewFlatSeekReader opens a seekable reader over the bytes rooted at root.
func NewFlatSeekReader(store Store, root CID) (*FlatSeekReader, error) {
	node, err := store.GetNode(root)
	if err != nil {
		return nil, err
	}
	if len(node.Children) == 0 {
		return nil, &Error{Kind: ErrNoLeafBlock, Message: "node has no children", CID: &root}
	}
	return &FlatSeekReader{store: store, node: node}, nil
}

// fetchActiveLeaf lazily loads the leaf at chunkIndex, or clears it at EOF.
func (r *FlatSeekReader) fetchActiveLeaf() error {
	if r.byteCursor == int64(r.node.Size) {
		r.leaf = nil
		r.leafSet = true
		return nil
	}
	leaf, err := r.store.GetRawBlock(r.node.Children[r.chunkIndex].CID)
	if err != nil {
		return err
	}
	r.leaf = leaf
	r.leafSet = true
	return nil
}

// Read copies up to len(p) bytes from the active leaf's tail, advancing
// byteCursor and rolling to the next leaf when the active one is
// exhausted.
func (r *FlatSeekReader) Read(p []byte) (int, error) {
	if !r.leafSet {
		if err := r.fetchActiveLeaf(); err != nil {
			return 0, err
		}
	}
	if r.byteCursor == int64(r.node.Size) {
		return 0, io.EOF
	}

	leafOff := int(r.byteCursor - r.chunkDistance)
	tail := r.leaf[leafOff:]
	n := copy(p, tail)
	r.byteCursor += int64(n)

	if leafOff+n == len(r.leaf) {
		r.chunkDistance += int64(len(r.leaf))
		r.chunkIndex++
		if err := r.fetchActiveLeaf(); err != nil {
			return n, err
		}
	}

	return n, nil
}

// Seek computes an absolute byte cursor from whence/offset, walks
// chunkIndex/chunkDistance to match, and re-arms the active leaf fetch.
func (r *FlatSeekReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.byteCursor + offset
	case io.SeekEnd:
		abs = int64(r.node.Size) + offset
	default:
		return 0, &Error{Kind: ErrInvalidSeek, Message: "invalid whence"}
	}

	if abs < 0 || abs >= int64(r.node.Size) {
		return 0, &Error{Kind: ErrInvalidSeek, Message: "seek position out of range"}
	}

	r.byteCursor = abs

	// Walk chunkIndex/chunkDistance forward or backward until
	// chunkDistance <= byteCursor < chunkDistance + len(children[chunkIndex]).
	for r.chunkDistance > r.byteCursor {
		r.chunkIndex--
		r.chunkDistance -= int64(r.node.Children[r.chunkIndex].Size)
	}
	for r.chunkIndex < len(r.node.Children) &&
		r.byteCursor >= r.chunkDistance+int64(r.node.Children[r.chunkIndex].Size) {
		r.chunkDistance += int64(r.node.Children[r.chunkIndex].Size)
		r.chunkIndex++
	}

	r.leafSet = false
	if err := r.fetchActiveLeaf(); err != nil {
		return 0, err
	}

	return r.byteCursor, nil
}
