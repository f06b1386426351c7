package cas

import "io"

// BalancedLayout is declared but not yet implemented; a full
// implementation would fan children out across multiple levels of
// intermediate nodes. It must preserve the same Organize/Retrieve
// contracts as FlatLayout once built.
type BalancedLayout struct {
	// Width is the intended fan-out per intermediate node.
	Width int
}

func (BalancedLayout) Organize(store Store, chunker Chunker) (CID, error) {
	return CID{}, &Error{Kind: ErrUnsupportedCodec, Message: "balanced layout not implemented"}
}

func (BalancedLayout) Retrieve(store Store, root CID) (io.Reader, error) {
	return nil, &Error{Kind: ErrUnsupportedCodec, Message: "balanced layout not implemented"}
}

// TrickleLayout is declared but not yet implemented; a full
// implementation would link successive depth-first subtrees the way the
// trickle DAG format does. It must preserve the same Organize/Retrieve
// contracts as FlatLayout once built.
type TrickleLayout struct {
	// MaxDirectChildren bounds the first subtree's fan-out.
	MaxDirectChildren int
}

func (TrickleLayout) Organize(store Store, chunker Chunker) (CID, error) {
	return CID{}, &Error{Kind: ErrUnsupportedCodec, Message: "trickle layout not implemented"}
}

func (TrickleLayout) Retrieve(store Store, root CID) (io.Reader, error) {
	return nil, &Error{Kind: ErrUnsupportedCodec, Message: "trickle layout not implemented"}
}
