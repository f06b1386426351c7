package cas

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type blockEntry struct {
	refcount int
	data     []byte
	codec    uint64
}

// MemStore is the reference in-memory block store: a single mutex-guarded
// map from CID to (refcount, bytes). Size limits, when set, are enforced
// before hashing, so an oversize write never produces a CID.
type MemStore struct {
	mu         sync.RWMutex
	blocks     map[string]*blockEntry
	rawMax     int
	rawMaxSet  bool
	nodeMax    int
	nodeMaxSet bool
	chunkMax   int
}

// NewMemStore creates an empty in-memory store. chunkMaxSize bounds the
// fixed chunker used by PutBytes and must be > 0 for PutBytes to be used;
// it cannot be changed after construction. A store built with 0 serves
// block-level calls only.
func NewMemStore(chunkMaxSize int) *MemStore {
	return &MemStore{
		blocks:   make(map[string]*blockEntry),
		chunkMax: chunkMaxSize,
	}
}

// SetRawBlockMaxSize bounds raw block writes.
func (s *MemStore) SetRawBlockMaxSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawMax, s.rawMaxSet = n, true
}

// SetNodeBlockMaxSize bounds node block writes.
func (s *MemStore) SetNodeBlockMaxSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeMax, s.nodeMaxSet = n, true
}

func (s *MemStore) RawBlockMaxSize() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawMax, s.rawMaxSet
}

func (s *MemStore) NodeBlockMaxSize() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodeMax, s.nodeMaxSet
}

func (s *MemStore) SupportedCodecs() map[uint64]bool {
	return map[uint64]bool{Raw: true, DagCbor: true}
}

// PutRawBlock stores data under its content hash and returns its CID.
func (s *MemStore) PutRawBlock(data []byte) (CID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rawMaxSet && len(data) > s.rawMax {
		return CID{}, &Error{Kind: ErrRawBlockTooLarge, Message: "raw block exceeds maximum size"}
	}

	c := MakeCID(Raw, data)
	key := c.String()
	if e, ok := s.blocks[key]; ok {
		e.refcount++
		return c, nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blocks[key] = &blockEntry{refcount: 1, data: buf, codec: Raw}
	logrus.WithFields(logrus.Fields{"cid": key, "codec": "raw", "size": len(data)}).Debug("cas: put raw block")
	return c, nil
}

// GetRawBlock fetches the raw bytes for a CID tagged Raw.
func (s *MemStore) GetRawBlock(c CID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.blocks[c.String()]
	if !ok {
		return nil, NewBlockNotFound(c)
	}
	if c.Codec() != Raw {
		return nil, NewUnexpectedBlockCodec(Raw, c.Codec())
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// PutNode CBOR-encodes node, stores it, and increments the refcount of
// every child CID the node references.
func (s *MemStore) PutNode(node *MerkleNode) (CID, error) {
	data, err := node.MarshalCBOR()
	if err != nil {
		return CID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nodeMaxSet && len(data) > s.nodeMax {
		return CID{}, &Error{Kind: ErrNodeBlockTooLarge, Message: "node block exceeds maximum size"}
	}

	c := MakeCID(DagCbor, data)
	key := c.String()
	if e, ok := s.blocks[key]; ok {
		e.refcount++
	} else {
		s.blocks[key] = &blockEntry{refcount: 1, data: data, codec: DagCbor}
	}

	for _, ref := range node.References() {
		if e, ok := s.blocks[ref.String()]; ok {
			e.refcount++
		}
	}

	logrus.WithFields(logrus.Fields{"cid": key, "codec": "dag-cbor", "children": len(node.References())}).Debug("cas: put node block")
	return c, nil
}

// GetNode fetches and decodes a Merkle node for a CID tagged DagCbor.
func (s *MemStore) GetNode(c CID) (*MerkleNode, error) {
	s.mu.RLock()
	e, ok := s.blocks[c.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, NewBlockNotFound(c)
	}
	if c.Codec() != DagCbor {
		return nil, NewUnexpectedBlockCodec(DagCbor, c.Codec())
	}
	var node MerkleNode
	if err := node.UnmarshalCBOR(e.data); err != nil {
		return nil, &Error{Kind: ErrUnexpectedBlockCodec, Message: "node decode failed", CID: &c, Cause: err}
	}
	return &node, nil
}

// PutBytes chunks r with the store's fixed chunker through a flat layout
// and returns the root CID.
func (s *MemStore) PutBytes(r io.Reader) (CID, error) {
	layout := FlatLayout{}
	return layout.Organize(s, NewFixedChunker(r, s.chunkMax))
}

// GetBytes returns a reader over the bytes rooted at c via the flat
// layout's retrieval path.
func (s *MemStore) GetBytes(c CID) (io.Reader, error) {
	layout := FlatLayout{}
	return layout.Retrieve(s, c)
}

// GetBytesSeeker returns a seekable reader over the bytes rooted at c.
func (s *MemStore) GetBytesSeeker(c CID) (io.ReadSeeker, error) {
	return NewFlatSeekReader(s, c)
}

// Has reports whether a block for c is present.
func (s *MemStore) Has(c CID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocks[c.String()]
	return ok
}

// GC drops every block whose refcount has fallen to zero. Not automatic:
// callers invoke it explicitly, e.g. after releasing a root.
func (s *MemStore) GC() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, e := range s.blocks {
		if e.refcount <= 0 {
			delete(s.blocks, key)
			dropped++
		}
	}
	if dropped > 0 {
		logrus.WithField("dropped", dropped).Warn("cas: gc reclaimed zero-refcount blocks")
	}
	return dropped
}

// Release decrements the refcount for a CID, e.g. when a caller is done
// with a root it previously held.
func (s *MemStore) Release(c CID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.blocks[c.String()]; ok {
		e.refcount--
	}
}
