package core

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		err  *GatewayError
		want int
	}{
		{NewBadRequestError("bad", nil), http.StatusBadRequest},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewForbiddenError("disabled"), http.StatusForbidden},
		{NewUnavailableError("empty"), http.StatusServiceUnavailable},
		{NewUpstreamError(429, []byte("limited")), http.StatusInternalServerError},
		{NewConversionError("broken", nil), http.StatusInternalServerError},
		{NewStreamingUnsupportedError(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatusCode(); got != tt.want {
			t.Errorf("%s: HTTPStatusCode = %d, want %d", tt.err.Type, got, tt.want)
		}
	}
}

func TestUpstreamErrorCarriesBody(t *testing.T) {
	err := NewUpstreamError(502, []byte(`{"error":"down"}`))
	if err.Message != `upstream returned status 502: {"error":"down"}` {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestToJSONIsFlat(t *testing.T) {
	err := NewNotFoundError("model group not found: x")
	body := err.ToJSON()
	if body["error"] != "model group not found: x" {
		t.Errorf("body = %+v", body)
	}
	if len(body) != 1 {
		t.Errorf("body must hold only the error message, got %+v", body)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewBadRequestError("bad", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
}
