package web

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	gwerrors "github.com/streamcat/authgateway/errors"
)

func TestSendErrorGatewayErrorNamespace(t *testing.T) {
	rw := httptest.NewRecorder()
	prob := ProblemDetailsForError(gwerrors.BlockedError("subject is denylisted"), "gateway:")
	logger := zap.NewNop()
	SendError(logger, "gateway:", rw, &RequestEvent{RequestID: "req-1", Method: "POST", Endpoint: "/validate"}, prob, errors.New("denylist rejection"))

	if rw.Code != 403 {
		t.Errorf("status code = %d, want 403", rw.Code)
	}

	var got ProblemDetails
	if err := json.Unmarshal(rw.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	want := ProblemDetails{Type: "gateway:Blocked", Detail: "subject is denylisted", Status: 403}
	if got != want {
		t.Errorf("body = %+v, want %+v", got, want)
	}
}

func TestSendErrorNonGatewayError(t *testing.T) {
	rw := httptest.NewRecorder()
	prob := ProblemDetailsForError(errors.New("boom"), "gateway:")
	SendError(zap.NewNop(), "gateway:", rw, &RequestEvent{}, prob, nil)

	if rw.Code != 500 {
		t.Errorf("status code = %d, want 500", rw.Code)
	}
}
