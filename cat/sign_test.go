package cat

import (
	"testing"
	"time"

	"github.com/jmhodges/clock"

	"github.com/streamcat/authgateway/cborval"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func mintToken(t *testing.T, now time.Time) []byte {
	t.Helper()
	rc := RegisteredClaims{
		Issuer:     "gateway-test",
		Subject:    "user-1",
		Audience:   "streamcat",
		Expiration: now.Add(time.Hour).Unix(),
		NotBefore:  now.Add(-time.Minute).Unix(),
		IssuedAt:   now.Unix(),
		CWTID:      "cti-1",
	}
	data, err := NewBuilder(rc).
		WithVersion(1).
		WithMethods("GET", "POST").
		Sign(testKey)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return data
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	data := mintToken(t, now)

	tok, err := DecodeAndVerify(data, testKey)
	if err != nil {
		t.Fatalf("DecodeAndVerify: %v", err)
	}
	rc, err := tok.RegisteredClaims()
	if err != nil {
		t.Fatalf("RegisteredClaims: %v", err)
	}
	if rc.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", rc.Subject)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	data := mintToken(t, now)
	// flip a byte inside the payload: the last 34 bytes are the MAC tag (a
	// 2-byte byte-string header plus 32 bytes of HMAC-SHA256)
	data[len(data)-40] ^= 0xff

	if _, err := DecodeAndVerify(data, testKey); err == nil {
		t.Errorf("DecodeAndVerify(tampered): want error, got nil")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	data := mintToken(t, now)

	if _, err := DecodeAndVerify(data, []byte("different-key-different-key-0000")); err == nil {
		t.Errorf("DecodeAndVerify(wrong key): want error, got nil")
	}
}

func TestVerifyRegisteredClaimsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	data := mintToken(t, now)
	tok, err := DecodeAndVerify(data, testKey)
	if err != nil {
		t.Fatalf("DecodeAndVerify: %v", err)
	}

	fc := clock.NewFake()
	fc.Set(now.Add(2 * time.Hour))
	err = VerifyRegisteredClaims(tok, VerificationOptions{Clock: fc, RequestMethod: "GET"})
	if err == nil {
		t.Errorf("VerifyRegisteredClaims after expiry: want error, got nil")
	}
}

func TestVerifyRegisteredClaimsMethodRejected(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	data := mintToken(t, now)
	tok, err := DecodeAndVerify(data, testKey)
	if err != nil {
		t.Fatalf("DecodeAndVerify: %v", err)
	}
	fc := clock.NewFake()
	fc.Set(now)
	err = VerifyRegisteredClaims(tok, VerificationOptions{Clock: fc, RequestMethod: "DELETE"})
	if err == nil {
		t.Errorf("VerifyRegisteredClaims with disallowed method: want error, got nil")
	}
}

func TestVerifyURIComponents(t *testing.T) {
	rc := RegisteredClaims{Expiration: time.Now().Add(time.Hour).Unix()}
	data, err := NewBuilder(rc).
		WithURIComponent(URIComponentScheme, cborval.MatchExact, "https").
		WithURIComponent(URIComponentHost, cborval.MatchExact, "example.com").
		WithURIComponent(URIComponentPath, cborval.MatchPrefix, "/videos/").
		WithURIComponent(URIComponentExtension, cborval.MatchExact, "m3u8").
		Sign(testKey)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tok, err := DecodeAndVerify(data, testKey)
	if err != nil {
		t.Fatalf("DecodeAndVerify: %v", err)
	}

	good := mustParseURL(t, "https://example.com/videos/abc.m3u8")
	if err := VerifyURI(tok, good); err != nil {
		t.Errorf("VerifyURI(good): %v", err)
	}

	bad := mustParseURL(t, "https://example.com/other/abc.m3u8")
	if err := VerifyURI(tok, bad); err == nil {
		t.Errorf("VerifyURI(bad path): want error, got nil")
	}
}
