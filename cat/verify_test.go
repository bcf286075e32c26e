package cat

import (
	"net/url"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestVerifyMethodNoClaim(t *testing.T) {
	rc := RegisteredClaims{}
	data, err := NewBuilder(rc).Sign(testKey)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tok, err := DecodeAndVerify(data, testKey)
	if err != nil {
		t.Fatalf("DecodeAndVerify: %v", err)
	}
	if err := VerifyMethod(tok, "DELETE"); err != nil {
		t.Errorf("VerifyMethod with no CATM claim: %v, want nil", err)
	}
}
