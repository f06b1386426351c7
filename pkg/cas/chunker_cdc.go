package cas

import "io"

// CDCChunker is a content-defined (rolling-hash) chunking strategy. The
// spec leaves the algorithm unspecified at the core; this is a declared
// stub that preserves the Chunker contract (non-empty, bounded, in-order
// chunks) by falling back to fixed-size boundaries.
type CDCChunker struct {
	inner *FixedChunker
}

// NewCDCChunker wraps r, capping every chunk at maxSize. The boundary
// algorithm itself is not content-defined yet; honoring the Chunker
// contract is what callers may depend on.
func NewCDCChunker(r io.Reader, maxSize int) *CDCChunker {
	return &CDCChunker{inner: NewFixedChunker(r, maxSize)}
}

// Next returns the next chunk, or io.EOF once the source is exhausted.
func (c *CDCChunker) Next() ([]byte, error) {
	return c.inner.Next()
}
