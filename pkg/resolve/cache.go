package resolve

import (
	"sync"

	"github.com/zeroutils-go/zeroucan/pkg/cas"
	"github.com/zeroutils-go/zeroucan/pkg/ucan"
)

// Store fetches the signed UCAN token stored at a proof CID. A typical
// implementation reads the block via a cas.Store and decodes its bytes
// as a wire-format token.
type Store interface {
	FetchUcan(c cas.CID) (*ucan.Ucan, error)
}

// BlockStoreProofs adapts a cas.Store holding raw UCAN wire bytes into
// a Store.
type BlockStoreProofs struct {
	Blocks cas.Store
}

func (b BlockStoreProofs) FetchUcan(c cas.CID) (*ucan.Ucan, error) {
	raw, err := b.Blocks.GetRawBlock(c)
	if err != nil {
		return nil, err
	}
	return ucan.Decode(string(raw))
}

// proofCacheEntry memoizes one CID's fetch-and-decode, using a
// sync.Once so the first caller to resolve a CID does the work and
// every concurrent caller observes the same result.
type proofCacheEntry struct {
	once  sync.Once
	ucan  *ucan.Ucan
	err   error
}

// ProofCache is a one-time-init cache of fetched proof UCANs, keyed by
// CID string. The first goroutine to request a CID populates it;
// concurrent callers block on the same sync.Once and see the identical
// result.
type ProofCache struct {
	mu      sync.Mutex
	entries map[string]*proofCacheEntry
}

// NewProofCache builds an empty proof cache.
func NewProofCache() *ProofCache {
	return &ProofCache{entries: make(map[string]*proofCacheEntry)}
}

// Get fetches and decodes the UCAN at c via store, memoizing the result
// for subsequent callers.
func (pc *ProofCache) Get(c cas.CID, store Store) (*ucan.Ucan, error) {
	key := c.String()

	pc.mu.Lock()
	entry, ok := pc.entries[key]
	if !ok {
		entry = &proofCacheEntry{}
		pc.entries[key] = entry
	}
	pc.mu.Unlock()

	entry.once.Do(func() {
		entry.ucan, entry.err = store.FetchUcan(c)
	})
	return entry.ucan, entry.err
}
