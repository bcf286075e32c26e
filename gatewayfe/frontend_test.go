package gatewayfe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/streamcat/authgateway/catpipeline"
	"github.com/streamcat/authgateway/denylist"
	"github.com/streamcat/authgateway/kv"
	"github.com/streamcat/authgateway/metrics"
)

type fakeResolver struct {
	result map[uint32][]string
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, asns []uint32) (map[uint32][]string, error) {
	return f.result, f.err
}

var feTestKey = []byte("frontend-test-key-frontend-test")

func newTestFrontEnd(t *testing.T) (*GatewayFrontEnd, clock.FakeClock) {
	t.Helper()
	store := denylist.NewStore(kv.NewMemStore())
	fc := clock.NewFake()
	fc.Set(time.Unix(1_700_000_000, 0))
	return &GatewayFrontEnd{
		Pipeline:   catpipeline.NewPipeline(store),
		Store:      store,
		Resolver:   &fakeResolver{result: map[uint32][]string{701: {"12.0.0.0/8"}}},
		SigningKey: feTestKey,
		Stats:      metrics.NewNoopScope(),
		Log:        zap.NewNop(),
		Clk:        fc,
	}, fc
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func TestGenerateAndValidateTestToken(t *testing.T) {
	gw, _ := newTestFrontEnd(t)
	handler := gw.Handler()

	genReq := GenerateTokenRequest{
		Issuer:            "gateway-test",
		Subject:           "user-1",
		Audience:          "aud-1",
		Countries:         []string{"DE", "AT"},
		ExpirationInHours: 1,
		TokenIdentifier:   "tid-1",
	}
	genRW := doJSON(t, handler, http.MethodPost, testTokensPath, genReq)
	if genRW.Code != http.StatusOK {
		t.Fatalf("generate token status = %d, body = %s", genRW.Code, genRW.Body.String())
	}
	var genResp GenerateTokenResponse
	if err := json.Unmarshal(genRW.Body.Bytes(), &genResp); err != nil {
		t.Fatalf("unmarshal generate response: %v", err)
	}

	country := "de"
	valReq := ValidateTokenRequest{
		Token:    genResp.Token,
		URL:      "https://my-streaming.api/media/clip.mp4",
		Method:   http.MethodGet,
		Issuer:   "gateway-test",
		ClientIP: "127.0.0.1",
		Country:  &country,
		Headers: map[string]string{
			"User-Agent":          "Mozilla/5.0 curl",
			"X-FWF-Custom-Header": "Lorem",
		},
	}
	valRW := doJSON(t, handler, http.MethodPost, validatePath, valReq)
	if valRW.Code != http.StatusOK {
		t.Fatalf("validate status = %d, body = %s", valRW.Code, valRW.Body.String())
	}
	var valResp ValidateResponse
	if err := json.Unmarshal(valRW.Body.Bytes(), &valResp); err != nil {
		t.Fatalf("unmarshal validate response: %v", err)
	}
	if !valResp.Valid || valResp.Subject != "user-1" {
		t.Errorf("valResp = %+v", valResp)
	}
}

func TestValidateWrongCountryRejected(t *testing.T) {
	gw, _ := newTestFrontEnd(t)
	handler := gw.Handler()

	genReq := GenerateTokenRequest{
		Issuer:            "gateway-test",
		Subject:           "user-1",
		Audience:          "aud-1",
		Countries:         []string{"DE", "AT"},
		ExpirationInHours: 1,
		TokenIdentifier:   "tid-1",
	}
	genRW := doJSON(t, handler, http.MethodPost, testTokensPath, genReq)
	var genResp GenerateTokenResponse
	_ = json.Unmarshal(genRW.Body.Bytes(), &genResp)

	country := "fr"
	valReq := ValidateTokenRequest{
		Token:    genResp.Token,
		URL:      "https://my-streaming.api/media/clip.mp4",
		Method:   http.MethodGet,
		Issuer:   "gateway-test",
		ClientIP: "127.0.0.1",
		Country:  &country,
		Headers: map[string]string{
			"User-Agent":          "Mozilla/5.0 curl",
			"X-FWF-Custom-Header": "Lorem",
		},
	}
	valRW := doJSON(t, handler, http.MethodPost, validatePath, valReq)
	if valRW.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403, body = %s", valRW.Code, valRW.Body.String())
	}
}

func TestValidateRejectsUnparseableToken(t *testing.T) {
	gw, _ := newTestFrontEnd(t)
	handler := gw.Handler()

	rw := doJSON(t, handler, http.MethodPost, validateSimplePath, ValidateTokenRequest{
		Token:    "not-valid-base64!!",
		Issuer:   "gateway-test",
		ClientIP: "127.0.0.1",
	})
	if rw.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", rw.Code, rw.Body.String())
	}
}

func TestBlockingDataSimpleAddAndGet(t *testing.T) {
	gw, _ := newTestFrontEnd(t)
	handler := gw.Handler()

	addRW := doJSON(t, handler, http.MethodPost, blockingDataSimplePfx+"SUBJECT", SimpleBlockRequest{Values: []string{"s1", "s2", "s1"}})
	if addRW.Code != http.StatusOK {
		t.Fatalf("add status = %d, body = %s", addRW.Code, addRW.Body.String())
	}

	getRW := doJSON(t, handler, http.MethodGet, blockingDataPath, nil)
	if getRW.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRW.Code)
	}
	var bd denylist.BlockedData
	if err := json.Unmarshal(getRW.Body.Bytes(), &bd); err != nil {
		t.Fatalf("unmarshal blocking data: %v", err)
	}
	if !bd.AnySubjects || len(bd.Subjects) != 2 || bd.Subjects[0] != "s1" || bd.Subjects[1] != "s2" {
		t.Errorf("bd.Subjects = %+v", bd.Subjects)
	}
	if !bd.Any {
		t.Errorf("bd.Any = false, want true")
	}
}

func TestBlockingDataASNsAddAllOrNothing(t *testing.T) {
	gw, _ := newTestFrontEnd(t)
	gw.Resolver = &fakeResolver{err: errResolverBoom}
	handler := gw.Handler()

	rw := doJSON(t, handler, http.MethodPost, blockingDataASNsPath, ASNBlockRequest{Values: []uint32{701}})
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500, body = %s", rw.Code, rw.Body.String())
	}

	bd, err := gw.Store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bd.AnyASNs {
		t.Errorf("store was updated despite resolver failure: %+v", bd)
	}
}

var errResolverBoom = &resolverBoom{}

type resolverBoom struct{}

func (e *resolverBoom) Error() string { return "resolver exploded" }
