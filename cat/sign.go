package cat

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/streamcat/authgateway/cborval"
)

// macStructure mirrors COSE's Mac_structure well enough to bind the
// protected header to the payload under the tag, without pulling in a full
// COSE implementation.
type macStructure struct {
	_         struct{} `cbor:",toarray"`
	Context   string
	Protected []byte
	Payload   []byte
}

func computeTag(key, protected, payload []byte) ([]byte, error) {
	toMAC, err := cbor.Marshal(macStructure{Context: "MAC0", Protected: protected, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("cat: building MAC structure: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(toMAC)
	return mac.Sum(nil), nil
}

// Sign encodes claims as a CBOR map and wraps it in a wireToken whose tag
// is an HMAC-SHA256 over the protected header and payload.
func Sign(claims map[int64]cborval.Value, key []byte) ([]byte, error) {
	payload, err := cborval.Encode(cborval.Map(claims))
	if err != nil {
		return nil, fmt.Errorf("cat: encoding claims: %w", err)
	}
	protected := []byte("HS256")
	tag, err := computeTag(key, protected, payload)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(wireToken{Protected: protected, Payload: payload, Tag: tag})
}

// VerifySignature checks that tag is the correct HMAC-SHA256 over protected
// and payload under key, using a constant-time comparison.
func VerifySignature(key, protected, payload, tag []byte) error {
	want, err := computeTag(key, protected, payload)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(want, tag) != 1 {
		return fmt.Errorf("cat: signature does not verify")
	}
	return nil
}

// DecodeAndVerify decodes data and verifies its signature under key in one
// step, the entry point token consumers should use. Verification is
// performed against the exact payload bytes that were decoded, not a
// re-serialization of the claims map, since CBOR map encoding order is not
// guaranteed to round-trip identically.
func DecodeAndVerify(data, key []byte) (*Token, error) {
	dw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := VerifySignature(key, dw.Protected, dw.Payload, dw.Tag); err != nil {
		return nil, err
	}
	return dw.Token, nil
}
