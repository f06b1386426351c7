package keys

import "testing"

func TestDIDRoundTripEd25519(t *testing.T) {
	priv, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	did := NewDID(priv.Public(), nil)
	s := did.String()

	parsed, err := ParseDID(s)
	if err != nil {
		t.Fatalf("ParseDID(%q): %v", s, err)
	}
	if !Equal(parsed.PublicKey, priv.Public()) {
		t.Error("round-tripped public key does not match original")
	}
	if parsed.Locator != nil {
		t.Error("expected no locator")
	}
}

func TestDIDRoundTripWithLocator(t *testing.T) {
	priv, err := GenerateP256()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	loc, err := ParseLocator("steve.zerocore.ai:443/public")
	if err != nil {
		t.Fatalf("ParseLocator: %v", err)
	}
	did := NewDID(priv.Public(), loc)
	s := did.String()

	parsed, err := ParseDID(s)
	if err != nil {
		t.Fatalf("ParseDID(%q): %v", s, err)
	}
	if parsed.Locator == nil {
		t.Fatal("expected a locator after round trip")
	}
	if parsed.Locator.String() != "steve.zerocore.ai:443/public" {
		t.Errorf("locator = %q, want %q", parsed.Locator.String(), "steve.zerocore.ai:443/public")
	}
}

func TestParseDIDRejectsWrongPrefix(t *testing.T) {
	if _, err := ParseDID("did:key:zabc"); err == nil {
		t.Error("expected error for a non-did:wk method")
	}
}

func TestExpectKeyType(t *testing.T) {
	priv, _ := GenerateEd25519()
	did := NewDID(priv.Public(), nil)
	if err := did.ExpectKeyType(Ed25519); err != nil {
		t.Errorf("ExpectKeyType(Ed25519): %v", err)
	}
	if err := did.ExpectKeyType(P256); err == nil {
		t.Error("expected mismatch error for P256")
	}
}

func TestParseLocatorForms(t *testing.T) {
	cases := []string{
		"example.com",
		"example.com:8443",
		"example.com/path",
		"example.com:8443/path",
		"203.0.113.5:443",
		"[::1]:443/path",
	}
	for _, s := range cases {
		loc, err := ParseLocator(s)
		if err != nil {
			t.Errorf("ParseLocator(%q): %v", s, err)
			continue
		}
		if loc.String() == "" {
			t.Errorf("ParseLocator(%q): empty round trip", s)
		}
	}
}

func TestParseLocatorRejectsEmpty(t *testing.T) {
	if _, err := ParseLocator(""); err == nil {
		t.Error("expected error for empty locator")
	}
}
