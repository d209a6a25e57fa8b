package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coop-intake-go/internal/domain/validation"
	"coop-intake-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

func TestHealth(t *testing.T) {
	h := New(pingerFunc(func(ctx context.Context) error { return nil }), logger.NewNop())
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = New(pingerFunc(func(ctx context.Context) error { return errors.New("down") }), logger.NewNop())
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteValidationError(t *testing.T) {
	verr := validation.New()
	verr.Add("cpf", "CPF inválido")

	rec := httptest.NewRecorder()
	require.True(t, WriteValidationError(rec, verr))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error.Code)
	assert.Equal(t, map[string]string{"cpf": "CPF inválido"}, body.Error.Fields)

	assert.False(t, WriteValidationError(httptest.NewRecorder(), errors.New("other")))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "12345678***", MaskToken("1234567890abcdef"))
	assert.Equal(t, "***", MaskToken("short"))
}
