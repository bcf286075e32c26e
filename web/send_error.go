// Package web holds the HTTP response helpers shared by the gateway's
// front end: problem-document construction and structured access logging.
package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	gwerrors "github.com/streamcat/authgateway/errors"
)

// ProblemDetails is an RFC 7807-shaped error body.
type ProblemDetails struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// RequestEvent accumulates the fields an access-log line needs; handlers
// fill it in as they go and SendError logs it once when the request fails.
// Requests that succeed are not logged.
type RequestEvent struct {
	RequestID string
	Method    string
	Endpoint  string
	Status    int
	Error     string
}

// ProblemDetailsForError converts an error from the validation pipeline or
// denylist store into a ProblemDetails, using namespace as the "type" URI
// prefix.
func ProblemDetailsForError(err error, namespace string) *ProblemDetails {
	gErr, ok := err.(*gwerrors.GatewayError)
	if !ok {
		return &ProblemDetails{
			Type:   namespace + "internal",
			Detail: err.Error(),
			Status: http.StatusInternalServerError,
		}
	}
	return &ProblemDetails{
		Type:   namespace + gErr.Kind.String(),
		Detail: gErr.Detail,
		Status: gwerrors.HTTPStatus(gErr.Kind),
	}
}

// SendError writes prob as the JSON response body, with prob.Status as the
// HTTP status code, and logs the request event plus the originating error.
func SendError(logger *zap.Logger, namespace string, w http.ResponseWriter, logEvent *RequestEvent, prob *ProblemDetails, err error) {
	logEvent.Status = prob.Status
	if err != nil {
		logEvent.Error = err.Error()
	}
	logger.Info("request failed",
		zap.String("request_id", logEvent.RequestID),
		zap.String("method", logEvent.Method),
		zap.String("endpoint", logEvent.Endpoint),
		zap.Int("status", logEvent.Status),
		zap.String("type", prob.Type),
		zap.String("detail", prob.Detail),
	)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(prob.Status)
	_ = json.NewEncoder(w).Encode(prob)
}
