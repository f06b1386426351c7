package cas

import "io"

// DualStore composes two stores with a configured default. Writes always
// go to the default; reads try the default first and fall back to the
// other only on BlockNotFound.
type DualStore struct {
	Default Store
	Other   Store
}

// NewDualStore builds a dual store, writing to def and falling back to
// other for reads.
func NewDualStore(def, other Store) *DualStore {
	return &DualStore{Default: def, Other: other}
}

func (d *DualStore) PutRawBlock(data []byte) (CID, error) {
	return d.Default.PutRawBlock(data)
}

func (d *DualStore) PutNode(node *MerkleNode) (CID, error) {
	return d.Default.PutNode(node)
}

func (d *DualStore) PutBytes(r io.Reader) (CID, error) {
	return d.Default.PutBytes(r)
}

func (d *DualStore) GetRawBlock(c CID) ([]byte, error) {
	data, err := d.Default.GetRawBlock(c)
	if isBlockNotFound(err) {
		return d.Other.GetRawBlock(c)
	}
	return data, err
}

func (d *DualStore) GetNode(c CID) (*MerkleNode, error) {
	node, err := d.Default.GetNode(c)
	if isBlockNotFound(err) {
		return d.Other.GetNode(c)
	}
	return node, err
}

func (d *DualStore) GetBytes(c CID) (io.Reader, error) {
	r, err := d.Default.GetBytes(c)
	if isBlockNotFound(err) {
		return d.Other.GetBytes(c)
	}
	return r, err
}

func (d *DualStore) Has(c CID) bool {
	return d.Default.Has(c) || d.Other.Has(c)
}

func (d *DualStore) SupportedCodecs() map[uint64]bool {
	out := make(map[uint64]bool)
	for k := range d.Default.SupportedCodecs() {
		out[k] = true
	}
	for k := range d.Other.SupportedCodecs() {
		out[k] = true
	}
	return out
}

func (d *DualStore) RawBlockMaxSize() (int, bool) {
	a, aSet := d.Default.RawBlockMaxSize()
	b, bSet := d.Other.RawBlockMaxSize()
	return maxOfTwo(a, aSet, b, bSet)
}

func (d *DualStore) NodeBlockMaxSize() (int, bool) {
	a, aSet := d.Default.NodeBlockMaxSize()
	b, bSet := d.Other.NodeBlockMaxSize()
	return maxOfTwo(a, aSet, b, bSet)
}

// maxOfTwo combines two optional size limits, preferring the more
// permissive (larger, or unbounded) of the two for advertised capacity.
func maxOfTwo(a int, aSet bool, b int, bSet bool) (int, bool) {
	if !aSet || !bSet {
		return 0, false
	}
	if a >= b {
		return a, true
	}
	return b, true
}

func isBlockNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrBlockNotFound
}
