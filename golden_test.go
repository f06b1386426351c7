// Package main holds the end-to-end golden scenarios: one test per
// literal worked example, exercising the store, layout, capability, and
// resolution packages together the way a real caller would.
package main

import (
	"io"
	"strings"
	"testing"

	"github.com/zeroutils-go/zeroucan/pkg/cas"
	"github.com/zeroutils-go/zeroucan/pkg/capability"
	"github.com/zeroutils-go/zeroucan/pkg/keys"
	"github.com/zeroutils-go/zeroucan/pkg/resolve"
	"github.com/zeroutils-go/zeroucan/pkg/ucan"
)

// Scenario 1: store round trip.
func TestGoldenStoreRoundTrip(t *testing.T) {
	store := cas.NewMemStore(0)

	c, err := store.PutRawBlock([]byte("hello"))
	if err != nil {
		t.Fatalf("PutRawBlock: %v", err)
	}

	got, err := store.GetRawBlock(c)
	if err != nil {
		t.Fatalf("GetRawBlock: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("GetRawBlock = %q, want %q", got, "hello")
	}

	_, err = store.GetNode(c)
	if err == nil {
		t.Fatal("expected GetNode on a raw block to fail")
	}
	casErr, ok := err.(*cas.Error)
	if !ok {
		t.Fatalf("expected *cas.Error, got %T", err)
	}
	if casErr.Kind != cas.ErrUnexpectedBlockCodec {
		t.Errorf("Kind = %v, want %v", casErr.Kind, cas.ErrUnexpectedBlockCodec)
	}
}

// Scenario 2: flat layout read, 56-byte Lorem ipsum fragment chunked at
// 10 bytes into 6 leaves (10,10,10,10,10,6).
func TestGoldenFlatLayoutRead(t *testing.T) {
	const input = "Lorem ipsum dolor sit amet, consectetur adipiscing elit."
	if len(input) != 56 {
		t.Fatalf("fixture length = %d, want 56", len(input))
	}

	store := cas.NewMemStore(0)
	chunker := cas.NewFixedChunker(strings.NewReader(input), 10)
	root, err := (cas.FlatLayout{}).Organize(store, chunker)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}

	node, err := store.GetNode(root)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	wantSizes := []uint64{10, 10, 10, 10, 10, 6}
	if len(node.Children) != len(wantSizes) {
		t.Fatalf("got %d leaves, want %d", len(node.Children), len(wantSizes))
	}
	for i, want := range wantSizes {
		if node.Children[i].Size != want {
			t.Errorf("leaf %d size = %d, want %d", i, node.Children[i].Size, want)
		}
	}

	reader, err := (cas.FlatLayout{}).Retrieve(store, root)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(out) != input {
		t.Errorf("round-tripped bytes = %q, want %q", out, input)
	}
}

// Scenario 3: flat layout seek over the ten literal sub-chunks.
func TestGoldenFlatLayoutSeek(t *testing.T) {
	chunks := []string{"Lorem", " ipsu", "m dol", "or sit", " amet,", " conse", "ctetur", " adipi", "scing ", "elit."}

	store := cas.NewMemStore(0)
	var children []cas.NodeChildRef
	var total uint64
	for _, chunk := range chunks {
		c, err := store.PutRawBlock([]byte(chunk))
		if err != nil {
			t.Fatalf("PutRawBlock(%q): %v", chunk, err)
		}
		children = append(children, cas.NodeChildRef{CID: c, Size: uint64(len(chunk))})
		total += uint64(len(chunk))
	}
	root, err := store.PutNode(&cas.MerkleNode{Size: total, Children: children})
	if err != nil {
		t.Fatalf("PutNode: %v", err)
	}

	reader, err := cas.NewFlatSeekReader(store, root)
	if err != nil {
		t.Fatalf("NewFlatSeekReader: %v", err)
	}

	if _, err := reader.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("Seek(Start, 5): %v", err)
	}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(reader, buf); err != nil {
		t.Fatalf("read after seek(Start,5): %v", err)
	}
	if string(buf) != " ipsu" {
		t.Errorf("read after seek(Start,5) = %q, want %q", buf, " ipsu")
	}

	if _, err := reader.Seek(-5, io.SeekEnd); err != nil {
		t.Fatalf("Seek(End, -5): %v", err)
	}
	if _, err := io.ReadFull(reader, buf); err != nil {
		t.Fatalf("read after seek(End,-5): %v", err)
	}
	if string(buf) != "elit." {
		t.Errorf("read after seek(End,-5) = %q, want %q", buf, "elit.")
	}

	if _, err := reader.Seek(0, io.SeekEnd); err == nil {
		t.Error("expected seek(End, 0) to fail: there is no byte at the end-of-stream position")
	}
}

// Scenario 4: capability permits, main capabilities set with a crud
// resource and a zerodb resource.
func TestGoldenCapabilityPermits(t *testing.T) {
	exampleResource := capability.MustResourceUri("example://example.com/public/")
	readAbility := capability.MustAbility("crud/read")
	deleteAbility := capability.MustAbility("crud/delete")
	deleteCaveats, err := capability.NewCaveats([]capability.Caveat{
		{"max_count": float64(5)},
		{"public": true},
	})
	if err != nil {
		t.Fatalf("NewCaveats: %v", err)
	}
	exampleAbilities, err := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		readAbility:   capability.Any(),
		deleteAbility: deleteCaveats,
	})
	if err != nil {
		t.Fatalf("NewAbilities: %v", err)
	}

	zerodbResource := capability.MustResourceUri("zerodb://app/users/")
	tableStarAbility := capability.MustAbility("db/table/*")
	rateLimitCaveats, err := capability.NewCaveats([]capability.Caveat{{"rate_limit": float64(100)}})
	if err != nil {
		t.Fatalf("NewCaveats: %v", err)
	}
	zerodbAbilities, err := capability.NewAbilities(map[capability.Ability]capability.Caveats{
		tableStarAbility: rateLimitCaveats,
	})
	if err != nil {
		t.Fatalf("NewAbilities: %v", err)
	}

	caps, err := capability.NewCapabilities(
		[]capability.ResourceUri{exampleResource, zerodbResource},
		[]capability.Abilities{exampleAbilities, zerodbAbilities},
	)
	if err != nil {
		t.Fatalf("NewCapabilities: %v", err)
	}

	photosResource := capability.MustResourceUri("example://example.com/public/photos/")
	publicOnly, err := capability.NewCaveats([]capability.Caveat{{"public": true}})
	if err != nil {
		t.Fatalf("NewCaveats: %v", err)
	}
	if _, _, _, ok := caps.Permits(photosResource, readAbility, publicOnly); !ok {
		t.Error("expected crud/read on the photos sub-path to be permitted")
	}

	usersResource := capability.MustResourceUri("zerodb://app/users/")
	tableReadAbility := capability.MustAbility("db/table/read")
	mismatchedCaveats, err := capability.NewCaveats([]capability.Caveat{
		{"rate_limit": float64(100)},
		{"public": true},
	})
	if err != nil {
		t.Fatalf("NewCaveats: %v", err)
	}
	if _, _, _, ok := caps.Permits(usersResource, tableReadAbility, mismatchedCaveats); ok {
		t.Error("expected db/table/read with an extra, undeclared caveat member to be rejected")
	}
}

// Scenario 5 and 6: three-keypair UCAN chain resolution, success and
// expiry-rejection variants.
func TestGoldenUcanChainResolution(t *testing.T) {
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
		t.Fatalf("NewCapabilities ucan0: %v", err)
	}

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

	buildChain := func(t *testing.T, ucan0Expiry *uint64) (*ucan.Ucan, *resolve.BlockStoreProofs) {
		t.Helper()
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

		blocks := cas.NewMemStore(0)
		token0, err := ucan0.Encode()
		if err != nil {
			t.Fatalf("encode ucan0: %v", err)
		}
		ucan0CID, err := blocks.PutRawBlock([]byte(token0))
		if err != nil {
			t.Fatalf("store ucan0: %v", err)
		}

		b1, err := ucan.NewBuilder(p1priv, p1DID, p2DID.String(), ucan1Caps)
		if err != nil {
			t.Fatalf("NewBuilder ucan1: %v", err)
		}
		b1.Proofs([]string{ucan0CID.String()})
		ucan1, err := b1.Build()
		if err != nil {
			t.Fatalf("build ucan1: %v", err)
		}

		return ucan1, &resolve.BlockStoreProofs{Blocks: blocks}
	}

	t.Run("resolves to the zerodb grant", func(t *testing.T) {
		ucan1, store := buildChain(t, nil)
		results, err := resolve.Resolve(ucan1, resolve.RootAuthority{DID: p0DID}, store, 1000)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		found := false
		for _, r := range results {
			if r.Tuple != nil && r.Tuple.Resource.String() == "zerodb://" &&
				r.Tuple.Ability.String() == "db/table/read" && r.Tuple.Caveats.IsAny() {
				found = true
			}
		}
		if !found {
			t.Errorf("expected resolved set to contain (zerodb://, db/table/read, any), got %+v", results)
		}
	})

	t.Run("fails once the root proof has expired", func(t *testing.T) {
		expiry := uint64(500)
		ucan1, store := buildChain(t, &expiry)
		_, err := resolve.Resolve(ucan1, resolve.RootAuthority{DID: p0DID}, store, 1000)
		if err == nil {
			t.Fatal("expected resolution to fail")
		}
		ucanErr, ok := err.(*ucan.Error)
		if !ok {
			t.Fatalf("expected *ucan.Error, got %T", err)
		}
		if ucanErr.Kind != ucan.ErrExpired {
			t.Errorf("Kind = %v, want %v", ucanErr.Kind, ucan.ErrExpired)
		}
	})
}
