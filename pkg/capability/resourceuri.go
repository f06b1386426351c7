package capability

import (
	"strings"

	"github.com/ipfs/go-cid"
)

// ProofReferenceForm distinguishes the five shapes a ucan: resource URI
// can take.
type ProofReferenceForm int

const (
	// ProofByCID is "ucan:<cid>": a specific proof in the current
	// token's prf set.
	ProofByCID ProofReferenceForm = iota
	// ProofAllCurrent is "ucan:./*": all proofs in the current token.
	ProofAllCurrent
	// ProofByAudience is "ucan://<did>/*": all proofs whose audience
	// equals <did>.
	ProofByAudience
	// ProofByAudienceScheme is "ucan://<did>/<scheme>": filtered also
	// by resource URI scheme.
	ProofByAudienceScheme
	// ProofAllTransient is "ucan:*": all capabilities delegated
	// transiently to the current issuer.
	ProofAllTransient
)

// ProofReference is a parsed ucan: resource URI.
type ProofReference struct {
	Form   ProofReferenceForm
	CID    *cid.Cid
	DID    string
	Scheme string
}

// ResourceUri is either a ucan: proof reference or any other URI.
type ResourceUri struct {
	raw string
	ref *ProofReference
}

// ParseResourceUri parses a resource URI string, recognizing the five
// ucan: proof-reference forms and otherwise treating the string as an
// opaque non-ucan URI.
func ParseResourceUri(s string) (ResourceUri, error) {
	if !strings.HasPrefix(s, "ucan:") {
		if s == "" {
			return ResourceUri{}, &Error{Kind: ErrInvalidResourceURI, Message: "empty resource URI"}
		}
		return ResourceUri{raw: s}, nil
	}

	rest := strings.TrimPrefix(s, "ucan:")
	ref, err := parseProofReference(rest)
	if err != nil {
		return ResourceUri{}, err
	}
	return ResourceUri{raw: s, ref: ref}, nil
}

func parseProofReference(rest string) (*ProofReference, error) {
	switch {
	case rest == "*":
		return &ProofReference{Form: ProofAllTransient}, nil
	case rest == "./*":
		return &ProofReference{Form: ProofAllCurrent}, nil
	case strings.HasPrefix(rest, "//"):
		tail := strings.TrimPrefix(rest, "//")
		did, path, found := strings.Cut(tail, "/")
		if did == "" {
			return nil, &Error{Kind: ErrInvalidProofReference, Message: "ucan:// reference missing did"}
		}
		if !found || path == "*" {
			return &ProofReference{Form: ProofByAudience, DID: did}, nil
		}
		return &ProofReference{Form: ProofByAudienceScheme, DID: did, Scheme: path}, nil
	default:
		c, err := cid.Decode(rest)
		if err != nil {
			return nil, &Error{Kind: ErrInvalidProofReference, Message: "invalid ucan: proof reference", Cause: err}
		}
		return &ProofReference{Form: ProofByCID, CID: &c}, nil
	}
}

// IsUcanReference reports whether this resource is a ucan: proof
// reference rather than an ordinary URI.
func (r ResourceUri) IsUcanReference() bool {
	return r.ref != nil
}

// Reference returns the parsed ucan: proof reference, if any.
func (r ResourceUri) Reference() *ProofReference {
	return r.ref
}

// String renders the resource URI back to its original form.
func (r ResourceUri) String() string {
	return r.raw
}

// Permits reports whether this (granted) resource permits the requested
// resource. Non-ucan: URIs permit by path prefix on the same scheme and
// authority; ucan: references only permit themselves, since proof-
// reference resolution (not delegation narrowing) is how their scope is
// narrowed.
func (r ResourceUri) Permits(other ResourceUri) bool {
	if r.IsUcanReference() || other.IsUcanReference() {
		return r.raw == other.raw
	}

	rScheme, rRest, rOK := strings.Cut(r.raw, "://")
	oScheme, oRest, oOK := strings.Cut(other.raw, "://")
	if !rOK || !oOK || rScheme != oScheme {
		return false
	}

	rAuthority, rPath, _ := strings.Cut(rRest, "/")
	oAuthority, oPath, _ := strings.Cut(oRest, "/")
	if rAuthority != oAuthority {
		return false
	}

	return oPath == rPath || strings.HasPrefix(oPath, rPath)
}
