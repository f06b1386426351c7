package resolve

import (
	"testing"

	"github.com/zeroutils-go/zeroucan/pkg/cas"
	"github.com/zeroutils-go/zeroucan/pkg/capability"
	"github.com/zeroutils-go/zeroucan/pkg/keys"
	"github.com/zeroutils-go/zeroucan/pkg/ucan"
)

// testStore adapts a cas.MemStore holding raw UCAN token bytes into a
// resolve.Store; put returns the CID each token was stored under.
type testStore struct {
	BlockStoreProofs
}

func newTestStore() *testStore {
	return &testStore{BlockStoreProofs{Blocks: cas.NewMemStore(0)}}
}

func (s *testStore) put(t *testing.T, u *ucan.Ucan) cas.CID {
	t.Helper()
	token, err := u.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c, err := s.Blocks.PutRawBlock([]byte(token))
	if err != nil {
		t.Fatalf("put raw block: %v", err)
	}
	return c
}

// buildChain builds UCAN-0 (P0 -> P1, grants zerodb://:db/table/read)
// and UCAN-1 (P1 -> P2, re-delegates everything UCAN-0 grants via
// ucan:./*), mirroring the three-keypair chain-resolution scenario.
func buildChain(t *testing.T, ucan0Expiry *uint64) (*keys.DID, *ucan.Ucan, *testStore) {
	t.Helper()
	return buildChainWithExpiries(t, ucan0Expiry, nil)
}

// buildChainWithExpiries is buildChain with independent control over
// both tokens' exp, for exercising the parent/proof time alignment rule.
func buildChainWithExpiries(t *testing.T, ucan0Expiry, ucan1Expiry *uint64) (*keys.DID, *ucan.Ucan, *testStore) {
	t.Helper()

	p0priv, err := keys.GenerateEd25519()
	if err != nil {
		t.Fatalf("generate p0: %v", err)
	}
	p0DID := keys.NewDID(p0priv.Public(), nil)

	p1priv, err := keys.GenerateEd25519()
	if err != nil {
		t.Fatalf("generate p1: %v", err)
	}
	p1DID := keys.NewDID(p1priv.Public(), nil)

	p2priv, err := keys.GenerateEd25519()
	if err != nil {
		t.Fatalf("generate p2: %v", err)
	}
	p2DID := keys.NewDID(p2priv.Public(), nil)

	zerodbResource := capability.MustResourceUri("zerodb://")
	readAbility := capability.MustAbility("db/table/read")
	zerodbAbilities, err := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		readAbility: capability.Any(),
	})
	if err != nil {
		t.Fatalf("NewAbilities: %v", err)
	}
	ucan0Caps, err := capability.NewCapabilities([]capability.ResourceUri{zerodbResource}, []capability.Abilities{zerodbAbilities})
	if err != nil {
		t.Fatalf("NewCapabilities: %v", err)
	}

	b0, err := ucan.NewBuilder(p0priv, p0DID, p1DID.String(), ucan0Caps)
	if err != nil {
		t.Fatalf("NewBuilder ucan0: %v", err)
	}
	if ucan0Expiry != nil {
		b0.Expires(*ucan0Expiry)
	}
	ucan0, err := b0.Build()
	if err != nil {
		t.Fatalf("build ucan0: %v", err)
	}

	store := newTestStore()
	ucan0CID := store.put(t, ucan0)

	delegateResource := capability.MustResourceUri("ucan:./*")
	ucanStarAbility := capability.MustAbility("ucan/*")
	delegateAbilities, err := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		ucanStarAbility: capability.Any(),
	})
	if err != nil {
		t.Fatalf("NewAbilities delegate: %v", err)
	}
	ucan1Caps, err := capability.NewCapabilities([]capability.ResourceUri{delegateResource}, []capability.Abilities{delegateAbilities})
	if err != nil {
		t.Fatalf("NewCapabilities ucan1: %v", err)
	}

	b1, err := ucan.NewBuilder(p1priv, p1DID, p2DID.String(), ucan1Caps)
	if err != nil {
		t.Fatalf("NewBuilder ucan1: %v", err)
	}
	b1.Proofs([]string{ucan0CID.String()})
	if ucan1Expiry != nil {
		b1.Expires(*ucan1Expiry)
	}
	ucan1, err := b1.Build()
	if err != nil {
		t.Fatalf("build ucan1: %v", err)
	}

	return p0DID, ucan1, store
}

func TestResolveThreeKeypairChain(t *testing.T) {
	p0DID, ucan1, store := buildChain(t, nil)
	authority := RootAuthority{DID: p0DID}

	results, err := Resolve(ucan1, authority, store, 1000)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one resolved tuple, got %d", len(results))
	}
	tuple := results[0].Tuple
	if tuple == nil {
		t.Fatal("expected a grounded tuple, got a transient marker")
	}
	if tuple.Resource.String() != "zerodb://" {
		t.Errorf("resource = %q, want %q", tuple.Resource.String(), "zerodb://")
	}
	if tuple.Ability.String() != "db/table/read" {
		t.Errorf("ability = %q, want %q", tuple.Ability.String(), "db/table/read")
	}
	if !tuple.Caveats.IsAny() {
		t.Error("expected the any caveats set")
	}
}

func TestResolveFailsWhenRootProofExpired(t *testing.T) {
	expiry := uint64(500)
	p0DID, ucan1, store := buildChain(t, &expiry)
	authority := RootAuthority{DID: p0DID}

	if _, err := Resolve(ucan1, authority, store, 1000); err == nil {
		t.Error("expected resolution to fail once the root proof has expired")
	}
}

func TestResolveFailsOnMissingProof(t *testing.T) {
	p0priv, _ := keys.GenerateEd25519()
	p0DID := keys.NewDID(p0priv.Public(), nil)
	p1priv, _ := keys.GenerateEd25519()
	p1DID := keys.NewDID(p1priv.Public(), nil)
	p2priv, _ := keys.GenerateEd25519()
	p2DID := keys.NewDID(p2priv.Public(), nil)

	delegateResource := capability.MustResourceUri("ucan:./*")
	ucanStarAbility := capability.MustAbility("ucan/*")
	delegateAbilities, _ := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		ucanStarAbility: capability.Any(),
	})
	ucan1Caps, _ := capability.NewCapabilities([]capability.ResourceUri{delegateResource}, []capability.Abilities{delegateAbilities})

	b1, err := ucan.NewBuilder(p1priv, p1DID, p2DID.String(), ucan1Caps)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	u1, err := b1.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	store := newTestStore()
	_, err = Resolve(u1, RootAuthority{DID: p0DID}, store, 1000)
	if err == nil {
		t.Fatal("expected failure when the proof chain is exhausted with unresolved capabilities")
	}
	resolveErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *resolve.Error, got %T", err)
	}
	if resolveErr.Kind != ErrUnresolvedCapabilities {
		t.Errorf("Kind = %v, want %v", resolveErr.Kind, ErrUnresolvedCapabilities)
	}
}

func TestAuthorizeFiltersByDefinition(t *testing.T) {
	p0DID, ucan1, store := buildChain(t, nil)

	def := capability.NewCapabilitiesDefinition()
	zerodbResource := capability.MustResourceUri("zerodb://")
	writeAbility := capability.MustAbility("db/table/write")
	schema, err := capability.NewCaveatsDefinition(nil)
	if err != nil {
		t.Fatalf("NewCaveatsDefinition: %v", err)
	}
	def.Insert(zerodbResource, writeAbility, schema)

	authority := RootAuthority{DID: p0DID, Definition: def}
	authz, transient, err := Authorize(ucan1, authority, store, 1000)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if len(transient) != 0 {
		t.Errorf("expected no transient markers, got %v", transient)
	}
	if len(authz.Resolved) != 0 {
		t.Errorf("expected the resolved read capability to be filtered out by a definition that only accepts write, got %d", len(authz.Resolved))
	}
}

func TestResolveFailsWhenProofExpiryExceedsParent(t *testing.T) {
	ucan0Exp := uint64(5000)
	ucan1Exp := uint64(2000)
	p0DID, ucan1, store := buildChainWithExpiries(t, &ucan0Exp, &ucan1Exp)
	authority := RootAuthority{DID: p0DID}

	_, err := Resolve(ucan1, authority, store, 1000)
	if err == nil {
		t.Fatal("expected resolution to fail when a proof's exp exceeds its parent's exp")
	}
	resolveErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *resolve.Error, got %T", err)
	}
	if resolveErr.Kind != ErrProofTimeMisaligned {
		t.Errorf("Kind = %v, want %v", resolveErr.Kind, ErrProofTimeMisaligned)
	}
}

func TestAbilitiesPermittedSkipsUcanStarSentinel(t *testing.T) {
	resource := capability.MustResourceUri("zerodb://")
	ability := capability.MustAbility("db/table/read")
	abilities, _ := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		ability: capability.Any(),
	})
	caps, err := capability.NewCapabilities([]capability.ResourceUri{resource}, []capability.Abilities{abilities})
	if err != nil {
		t.Fatalf("NewCapabilities: %v", err)
	}

	want, _ := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		capability.MustAbility("ucan/*"): capability.Any(),
	})
	if !abilitiesPermitted(caps, &want) {
		t.Error("a ucan/* sentinel request should never be blocked by abilitiesPermitted")
	}
}
