package resolve

import (
	"fmt"
	"strings"

	"github.com/zeroutils-go/zeroucan/pkg/cas"
)

// Kind classifies a resolve package error.
type Kind string

const (
	ErrAudienceDidNotMatch             Kind = "AUDIENCE_DID_NOT_MATCH"
	ErrSchemeNotPermittedInScope       Kind = "SCHEME_NOT_PERMITTED_IN_SCOPE"
	ErrAbilitiesNotPermittedInScope    Kind = "ABILITIES_NOT_PERMITTED_IN_SCOPE"
	ErrCapabilityNotPermittedInScope   Kind = "CAPABILITY_NOT_PERMITTED_IN_SCOPE"
	ErrCapabilityNotDelegatedByRootIss Kind = "CAPABILITY_NOT_DELEGATED_BY_ROOT_ISSUER"
	ErrProofCidNotFound                Kind = "PROOF_CID_NOT_FOUND"
	ErrUnresolvedCapabilities          Kind = "UNRESOLVED_CAPABILITIES"
	ErrProofTimeMisaligned             Kind = "PROOF_TIME_MISALIGNED"
)

// Trace is the sequence of proof CIDs walked to reach the point of
// failure, innermost (most recently visited) first.
type Trace []cas.CID

func (t Trace) String() string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = c.String()
	}
	return strings.Join(parts, " <- ")
}

// Error is the typed error returned by this package. Every attenuation
// failure carries the trace of proof CIDs walked so far, for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Trace   Trace
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("resolve: %s: %s", e.Kind, e.Message)
	if len(e.Trace) > 0 {
		msg += fmt.Sprintf(" (trace: %s)", e.Trace.String())
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
