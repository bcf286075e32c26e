package errors

import (
	"net/http"
	"testing"
)

func TestIs(t *testing.T) {
	err := BlockedError("subject %q is denylisted", "abc123")
	if !Is(err, Blocked) {
		t.Errorf("Is(err, Blocked) = false, want true")
	}
	if Is(err, TokenDecode) {
		t.Errorf("Is(err, TokenDecode) = true, want false")
	}
	if Is(err, BadRequest) {
		t.Errorf("Is(err, BadRequest) = true, want false")
	}
}

func TestIsNonGatewayError(t *testing.T) {
	if Is(nil, BadRequest) {
		t.Errorf("Is(nil, BadRequest) = true, want false")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{TokenDecode, http.StatusForbidden},
		{SignatureInvalid, http.StatusForbidden},
		{ClaimRejected, http.StatusForbidden},
		{Blocked, http.StatusForbidden},
		{ValidatorFailure, http.StatusForbidden},
		{PersistenceFailure, http.StatusInternalServerError},
		{ResolverFailure, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.kind); got != c.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestStatusForNonGatewayError(t *testing.T) {
	if got := StatusFor(errPlain("boom")); got != http.StatusInternalServerError {
		t.Errorf("StatusFor(plain error) = %d, want 500", got)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
