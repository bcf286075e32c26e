package catvalidators

import (
	"testing"

	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/cborval"
)

func matchValue(kind cborval.MatchKind, pattern string) cborval.Value {
	return cborval.Map(map[int64]cborval.Value{1: cborval.Int64(int64(kind)), 2: cborval.Text(pattern)})
}

func TestCATVValidator(t *testing.T) {
	v := &CATVValidator{}

	if err := v.Validate(cborval.Value{}, false, Context{}); err != nil {
		t.Errorf("absent CATV: %v, want nil", err)
	}
	if err := v.Validate(cborval.Int64(1), true, Context{}); err != nil {
		t.Errorf("version 1: %v, want nil", err)
	}
	if err := v.Validate(cborval.Int64(9), true, Context{}); err == nil {
		t.Errorf("unsupported version: want error, got nil")
	}
	if err := v.Validate(cborval.Text("1"), true, Context{}); err == nil {
		t.Errorf("wrong type: want error, got nil")
	}
}

func TestCATGEOISO3166Validator(t *testing.T) {
	v := &CATGEOISO3166Validator{}
	claim := cborval.Array([]cborval.Value{cborval.Text("US"), cborval.Text("CA")})

	if err := v.Validate(claim, false, Context{}); err != nil {
		t.Errorf("absent claim: %v, want nil", err)
	}
	if err := v.Validate(claim, true, Context{ClientCountry: "us"}); err != nil {
		t.Errorf("allowed country: %v, want nil", err)
	}
	if err := v.Validate(claim, true, Context{ClientCountry: " us "}); err != nil {
		t.Errorf("allowed country with whitespace: %v, want nil", err)
	}
	if err := v.Validate(claim, true, Context{ClientCountry: "DE"}); err == nil {
		t.Errorf("disallowed country: want error, got nil")
	}
	if err := v.Validate(claim, true, Context{}); err != nil {
		t.Errorf("missing client country: %v, want nil (nothing to check against; Ordered omits this validator in this case)", err)
	}

	empty := cborval.Array(nil)
	if err := v.Validate(empty, true, Context{ClientCountry: "DE"}); err != nil {
		t.Errorf("empty claim: %v, want nil (no restriction expressed)", err)
	}
}

func TestCATNIPValidator(t *testing.T) {
	v := &CATNIPValidator{}
	prefix := cborval.Array([]cborval.Value{cborval.Int64(16), cborval.Bytes([]byte{192, 168})})
	claim := cborval.Array([]cborval.Value{prefix})

	if err := v.Validate(claim, true, Context{ClientIP: "192.168.5.5"}); err != nil {
		t.Errorf("IP within prefix: %v, want nil", err)
	}
	if err := v.Validate(claim, true, Context{ClientIP: "10.0.0.1"}); err == nil {
		t.Errorf("IP outside prefix: want error, got nil")
	}

	empty := cborval.Array(nil)
	if err := v.Validate(empty, true, Context{ClientIP: "10.0.0.1"}); err != nil {
		t.Errorf("empty claim: %v, want nil", err)
	}
	if err := v.Validate(claim, false, Context{}); err != nil {
		t.Errorf("absent claim: %v, want nil", err)
	}
}

func TestCATHValidator(t *testing.T) {
	v := &CATHValidator{}
	claim := cborval.Map(map[int64]cborval.Value{
		1: cborval.Text("User-Agent"),
		2: matchValue(cborval.MatchContains, "Mozilla"),
	})
	ctx := Context{Headers: map[string]string{"User-Agent": "Mozilla/5.0"}}
	if err := v.Validate(claim, true, ctx); err != nil {
		t.Errorf("matching header: %v, want nil", err)
	}

	ctxWrongCase := Context{Headers: map[string]string{"user-agent": "Mozilla/5.0"}}
	if err := v.Validate(claim, true, ctxWrongCase); err == nil {
		t.Errorf("case-mismatched header name: want error (comparison is case-sensitive), got nil")
	}

	ctxMissing := Context{Headers: map[string]string{}}
	if err := v.Validate(claim, true, ctxMissing); err == nil {
		t.Errorf("missing header: want error, got nil")
	}
}

func TestCATHValidatorPresenceOnly(t *testing.T) {
	v := &CATHValidator{}
	claim := cborval.Map(map[int64]cborval.Value{
		1: cborval.Text("X-Request-Id"),
		2: cborval.Null(),
	})
	if err := v.Validate(claim, true, Context{Headers: map[string]string{"X-Request-Id": "anything"}}); err != nil {
		t.Errorf("presence-only pair: %v, want nil", err)
	}
	if err := v.Validate(claim, true, Context{Headers: map[string]string{}}); err == nil {
		t.Errorf("presence-only pair with header absent: want error, got nil")
	}
}

func TestCATHValidatorOddMap(t *testing.T) {
	v := &CATHValidator{}
	claim := cborval.Map(map[int64]cborval.Value{1: cborval.Text("User-Agent")})
	if err := v.Validate(claim, true, Context{}); err == nil {
		t.Errorf("odd-sized CATH map: want error, got nil")
	}
}

func TestOrderedIncludesAllFourWhenCountrySupplied(t *testing.T) {
	vs := Ordered(true)
	if len(vs) != 4 {
		t.Fatalf("len(Ordered(true)) = %d, want 4", len(vs))
	}
	if vs[0].ClaimKey() != 100 {
		t.Errorf("first validator claim key = %d, want CATV (100)", vs[0].ClaimKey())
	}
	found := false
	for _, v := range vs {
		if v.ClaimKey() == cat.ClaimCATGEOISO3166 {
			found = true
		}
	}
	if !found {
		t.Errorf("Ordered(true) omits CATGEOISO3166Validator")
	}
}

func TestOrderedOmitsCountryValidatorWhenNotSupplied(t *testing.T) {
	vs := Ordered(false)
	if len(vs) != 3 {
		t.Fatalf("len(Ordered(false)) = %d, want 3", len(vs))
	}
	for _, v := range vs {
		if v.ClaimKey() == cat.ClaimCATGEOISO3166 {
			t.Errorf("Ordered(false) includes CATGEOISO3166Validator")
		}
	}
}
