package cas

import "io"

// Layout organizes a chunk stream into a DAG of raw leaves plus Merkle
// node(s), and reverses that into a byte reader given the root CID.
type Layout interface {
	// Organize consumes chunks from chunker, writes leaves and a Merkle
	// node to store, and returns the root CID.
	Organize(store Store, chunker Chunker) (CID, error)

	// Retrieve returns a reader that reconstructs the original bytes in
	// order, given the root CID.
	Retrieve(store Store, root CID) (io.Reader, error)
}
