package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_IncludesBody(t *testing.T) {
	err := &TransportError{StatusCode: 401, Body: `{"message":"Unauthorized"}`}
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Contains(t, err.Error(), `Response: {"message":"Unauthorized"}`)
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("rewrite: %w", &TransportError{Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "Response:")
}

func TestConfigError(t *testing.T) {
	assert.Equal(t, "configuration completion.api_key: not set", (&ConfigError{Key: "completion.api_key", Msg: "not set"}).Error())
	assert.Equal(t, "configuration: broken", (&ConfigError{Msg: "broken"}).Error())
}

func TestValidation(t *testing.T) {
	err := Validation("rating", "must be between %d and %d", 1, 5)
	assert.Equal(t, "invalid rating: must be between 1 and 5", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("rating", "bad"), http.StatusBadRequest},
		{"decode", &DecodeError{Name: "main.c"}, http.StatusBadRequest},
		{"transport", fmt.Errorf("wrapped: %w", &TransportError{StatusCode: 500}), http.StatusBadGateway},
		{"config", &ConfigError{Msg: "x"}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
