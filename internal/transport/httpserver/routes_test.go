package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coop-intake-go/internal/config"
	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"coop-intake-go/internal/transport/httpserver/handler"
	adminhandler "coop-intake-go/internal/transport/httpserver/handler/admin"
	commonhandler "coop-intake-go/internal/transport/httpserver/handler/common"
	publichandler "coop-intake-go/internal/transport/httpserver/handler/public"
	"coop-intake-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

type unknownTokens struct{}

func (unknownTokens) CreateProposal(ctx context.Context, input proposalsdomain.ProposalInput) (*proposalsdomain.Proposal, error) {
	return nil, proposalsdomain.ErrUnknownCampaign
}

func (unknownTokens) OpenUploadSession(ctx context.Context, token string) (*proposalsdomain.UploadSession, error) {
	return nil, proposalsdomain.ErrUploadTokenNotFound
}

func (unknownTokens) AttachDocumentByToken(ctx context.Context, token string, input proposalsdomain.AttachDocumentInput) (*proposalsdomain.Document, error) {
	return nil, proposalsdomain.ErrUploadTokenNotFound
}

func (unknownTokens) RemoveDocumentByToken(ctx context.Context, token string, docType proposalsdomain.DocumentType) (int64, error) {
	return 0, proposalsdomain.ErrUploadTokenNotFound
}

func (unknownTokens) FinalizeByToken(ctx context.Context, token string) (*proposalsdomain.Proposal, error) {
	return nil, proposalsdomain.ErrUploadTokenNotFound
}

type noSessions struct{}

func (noSessions) Create(ttl time.Duration) (string, time.Time, error) { return "", time.Time{}, nil }
func (noSessions) Valid(token string) bool                             { return false }
func (noSessions) Delete(token string)                                 {}

func TestRouterLogsMaskedUploadToken(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, zapcore.DebugLevel, "json")

	handlers := handler.New(
		commonhandler.New(nil, log),
		publichandler.New(nil, unknownTokens{}, nil, nil, 1024, log),
		adminhandler.New(nil, nil, noSessions{}, adminhandler.Credentials{}, log),
	)
	router := NewRouter(config.Config{RequestTimeout: 5 * time.Second}, handlers, noSessions{}, nil, log)

	token := "0f3c2a9e-7b1d-4e5f-9a8b-112233445566"
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/uploads/"+token, nil),
		httptest.NewRequest(http.MethodPost, "/api/uploads/"+token+"/finalize", nil),
		httptest.NewRequest(http.MethodDelete, "/api/uploads/"+token+"/documents/resume", nil),
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	out := buf.String()
	assert.NotContains(t, out, token)
	assert.NotContains(t, out, "112233445566")
	assert.Contains(t, out, "/api/uploads/0f3c2a9e***")
	assert.Contains(t, out, "/api/uploads/0f3c2a9e***/finalize")
	assert.Contains(t, out, `"status":404`)
}

func TestRouterLogsOtherPathsUnchanged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, zapcore.DebugLevel, "json")

	handlers := handler.New(
		commonhandler.New(nil, log),
		publichandler.New(nil, unknownTokens{}, nil, nil, 1024, log),
		adminhandler.New(nil, nil, noSessions{}, adminhandler.Credentials{}, log),
	)
	router := NewRouter(config.Config{RequestTimeout: 5 * time.Second}, handlers, noSessions{}, nil, log)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health?debug=1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"path":"/api/health"`)
	assert.NotContains(t, buf.String(), "debug=1")
}
