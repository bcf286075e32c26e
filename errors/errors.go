package errors

import (
	"fmt"
	"net/http"
)

// Kind categorizes the ways a token validation or denylist-management
// request can fail, so the front end can map it to an HTTP status without
// re-inspecting the error chain.
type Kind int

const (
	// BadRequest means the caller's request was structurally invalid
	// (malformed JSON, a failed struct-tag validation).
	BadRequest Kind = iota
	// TokenDecode means the token bytes could not be parsed as CBOR, or the
	// CBOR did not have the shape a CAT requires.
	TokenDecode
	// SignatureInvalid means the token parsed but its MAC did not verify
	// under the configured signing key.
	SignatureInvalid
	// ClaimRejected means a registered claim (exp, nbf, iss, aud, ...)
	// failed verification.
	ClaimRejected
	// Blocked means the request was rejected by the denylist.
	Blocked
	// ValidatorFailure means a custom claim validator (CATV, CATH,
	// CATGEOISO3166, CATNIP) rejected the token.
	ValidatorFailure
	// PersistenceFailure means the denylist store could not be read or
	// written.
	PersistenceFailure
	// ResolverFailure means the ASN-to-CIDR resolver could not be reached
	// or returned an error.
	ResolverFailure
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BadRequest"
	case TokenDecode:
		return "TokenDecode"
	case SignatureInvalid:
		return "SignatureInvalid"
	case ClaimRejected:
		return "ClaimRejected"
	case Blocked:
		return "Blocked"
	case ValidatorFailure:
		return "ValidatorFailure"
	case PersistenceFailure:
		return "PersistenceFailure"
	case ResolverFailure:
		return "ResolverFailure"
	default:
		return "Unknown"
	}
}

// GatewayError represents an error produced anywhere in the validation
// pipeline or denylist management path, tagged with a Kind so the front end
// can render the right status code without type-switching on every
// concrete error type.
type GatewayError struct {
	Kind   Kind
	Detail string
}

func (e *GatewayError) Error() string {
	return e.Detail
}

// New is a convenience function for creating a new GatewayError.
func New(kind Kind, msg string, args ...interface{}) error {
	return &GatewayError{
		Kind:   kind,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// Is reports whether err is a *GatewayError of the given Kind.
func Is(err error, kind Kind) bool {
	gErr, ok := err.(*GatewayError)
	if !ok {
		return false
	}
	return gErr.Kind == kind
}

func BadRequestError(msg string, args ...interface{}) error {
	return New(BadRequest, msg, args...)
}

func TokenDecodeError(msg string, args ...interface{}) error {
	return New(TokenDecode, msg, args...)
}

func SignatureInvalidError(msg string, args ...interface{}) error {
	return New(SignatureInvalid, msg, args...)
}

func ClaimRejectedError(msg string, args ...interface{}) error {
	return New(ClaimRejected, msg, args...)
}

func BlockedError(msg string, args ...interface{}) error {
	return New(Blocked, msg, args...)
}

func ValidatorFailureError(msg string, args ...interface{}) error {
	return New(ValidatorFailure, msg, args...)
}

func PersistenceFailureError(msg string, args ...interface{}) error {
	return New(PersistenceFailure, msg, args...)
}

func ResolverFailureError(msg string, args ...interface{}) error {
	return New(ResolverFailure, msg, args...)
}

// HTTPStatus maps a Kind to the status code the front end should send.
func HTTPStatus(kind Kind) int {
	switch kind {
	case BadRequest:
		return http.StatusBadRequest
	case TokenDecode, SignatureInvalid, ClaimRejected, Blocked, ValidatorFailure:
		return http.StatusForbidden
	case PersistenceFailure, ResolverFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// StatusFor maps an arbitrary error to the HTTP status the front end should
// send, defaulting to 500 for errors that aren't a *GatewayError.
func StatusFor(err error) int {
	gErr, ok := err.(*GatewayError)
	if !ok {
		return http.StatusInternalServerError
	}
	return HTTPStatus(gErr.Kind)
}
