//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coop-intake-go/internal/blob"
	"coop-intake-go/internal/config"
	"coop-intake-go/internal/db"
	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"coop-intake-go/internal/integration/crm"
	"coop-intake-go/internal/integration/notifier"
	"coop-intake-go/internal/refdata/ibge"
	"coop-intake-go/internal/repository/inmemory"
	campaignsrepo "coop-intake-go/internal/repository/postgres/campaigns"
	proposalsrepo "coop-intake-go/internal/repository/postgres/proposals"
	"coop-intake-go/internal/transport/httpserver"
	"coop-intake-go/internal/transport/httpserver/handler"
	adminhandler "coop-intake-go/internal/transport/httpserver/handler/admin"
	commonhandler "coop-intake-go/internal/transport/httpserver/handler/common"
	publichandler "coop-intake-go/internal/transport/httpserver/handler/public"
	"coop-intake-go/internal/worker"
	"coop-intake-go/pkg/logger"
	"gorm.io/gorm"
)

const (
	adminUser     = "admin"
	adminPassword = "e2e-secret"
)

type crmRecorder struct {
	mu      sync.Mutex
	fields  []map[string][]string
	files   []map[string]string
	calls   atomic.Int32
	failing atomic.Bool
}

type testEnv struct {
	server   *httptest.Server
	crm      *httptest.Server
	notifier *httptest.Server
	recorder *crmRecorder
	notices  *atomic.Int32
	db       *gorm.DB
	cancel   context.CancelFunc
	runner   *worker.Runner
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.NewNop()
	recorder := &crmRecorder{}
	crmServer := newCRMServer(t, recorder)
	notices := &atomic.Int32{}
	notifierServer := newNotifierServer(notices)

	cfg := config.Config{
		DB:             config.DBConfig{DSN: dsn},
		RequestTimeout: 30 * time.Second,
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	cities, err := ibge.Load("")
	if err != nil {
		t.Fatalf("load cities: %v", err)
	}

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)

	blobs := blob.NewLocalStore(t.TempDir(), server.URL, 5<<20)
	ctx, cancel := context.WithCancel(context.Background())
	runner := worker.NewRunner(32, 2, 30*time.Second, log)
	runner.Start(ctx)

	crmClient := crm.NewClient(crm.Config{
		BaseURL:           crmServer.URL,
		APIKey:            "crm-key",
		Timeout:           5 * time.Second,
		DownloadTimeout:   5 * time.Second,
		MaxImageDimension: 1280,
		JPEGQuality:       80,
	}, cities, blobs, log)
	notifierClient := notifier.NewClient(notifier.Config{BaseURL: notifierServer.URL, Timeout: 5 * time.Second})

	campaignService := campaignsdomain.NewService(campaignsrepo.NewPostgres(dbConn), inmemory.NewInMemoryCampaignCache(), time.Minute)
	proposalService := proposalsdomain.NewService(
		proposalsrepo.NewPostgres(dbConn),
		campaignService,
		notifierClient,
		crmClient,
		runner,
		log,
		proposalsdomain.Config{UploadTokenTTL: 24 * time.Hour},
	)

	sqlDB, err := dbConn.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sessions := inmemory.NewInMemorySessionStore()
	handlers := handler.New(
		commonhandler.New(sqlDB, log),
		publichandler.New(campaignService, proposalService, blobs, cities, 5<<20, log),
		adminhandler.New(campaignService, proposalService, sessions, adminhandler.Credentials{
			User:       adminUser,
			Password:   adminPassword,
			SessionTTL: time.Hour,
		}, log),
	)
	mux.Handle("/", httpserver.NewRouter(cfg, handlers, sessions, blobs.Handler(), log))

	return &testEnv{
		server:   server,
		crm:      crmServer,
		notifier: notifierServer,
		recorder: recorder,
		notices:  notices,
		db:       dbConn,
		cancel:   cancel,
		runner:   runner,
	}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.cancel()
	e.runner.Wait()
	e.crm.Close()
	e.notifier.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func newCRMServer(t *testing.T, recorder *crmRecorder) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder.calls.Add(1)
		if r.Header.Get("X-API-KEY") != "crm-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		files := make(map[string]string)
		for field, headers := range r.MultipartForm.File {
			files[field] = headers[0].Filename
		}
		recorder.mu.Lock()
		recorder.fields = append(recorder.fields, r.MultipartForm.Value)
		recorder.files = append(recorder.files, files)
		recorder.mu.Unlock()

		if recorder.failing.Load() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"errors":{"Cpf":["CPF já cadastrado"]}}`)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	}))
}

func newNotifierServer(notices *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notices.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE proposal_sync_attempts, proposal_notifications, proposal_documents, proposals, campaigns CASCADE",
	).Error
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Timeout: 10 * time.Second, Jar: jar}
}

func requestJSON(t *testing.T, client *http.Client, method, url string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

func uploadFile(t *testing.T, client *http.Client, url, docType, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("type", docType); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

func login(t *testing.T, env *testEnv, client *http.Client) {
	t.Helper()
	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/admin/login", map[string]string{
		"user":     adminUser,
		"password": adminPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", resp.StatusCode, string(body))
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type campaignResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type submitResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	UploadToken string `json:"upload_token"`
	UploadPath  string `json:"upload_path"`
}

type detailsResponse struct {
	Proposal struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		CRMSynced bool   `json:"crm_synced"`
	} `json:"proposal"`
	Documents     []json.RawMessage `json:"documents"`
	Notifications []struct {
		Type   string `json:"type"`
		Status string `json:"status"`
	} `json:"notifications"`
	SyncAttempts []struct {
		Trigger string `json:"trigger"`
		Status  string `json:"status"`
	} `json:"sync_attempts"`
}

func proposalPayload(campaignID, cpf string) map[string]interface{} {
	return map[string]interface{}{
		"cpf":                     cpf,
		"nomeCompleto":            "Maria Aparecida da Silva",
		"rg":                      "12.345.678-9",
		"estadoExpedidor":         "SP",
		"orgaoExpedidor":          "SSP",
		"nomeMae":                 "Joana da Silva",
		"pis":                     "123.45678.90-1",
		"dataNascimento":          "20/05/1990",
		"sexo":                    "Feminino",
		"corRaca":                 "Parda",
		"estadoCivil":             "Casada",
		"nacionalidade":           "Brasileira",
		"naturalidadeEstado":      "SP",
		"naturalidadeMunicipio":   "Campinas",
		"cep":                     "01310-100",
		"estado":                  "SP",
		"cidade":                  "São Paulo",
		"logradouroTipo":          "Avenida",
		"logradouroNome":          "Paulista",
		"numero":                  "1000",
		"bairro":                  "Bela Vista",
		"complemento":             "",
		"telefone":                "(11) 98765-4321",
		"email":                   "maria@example.com",
		"escolaridade":            "Ensino Médio Completo",
		"categoriaFuncao":         "Operacional",
		"cargo":                   "Auxiliar",
		"tamanhoCamisa":           "M",
		"aceiteConcordancia":      true,
		"aceiteLGPD":              true,
		"criterioLocalidade":      "Sim",
		"criterioExperiencia":     "Sim",
		"criterioDisponibilidade": "Sim",
		"campaignId":              campaignID,
	}
}

func TestE2EHealthAndAdminAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := newClient(t)

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/admin/proposals", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d: %s", resp.StatusCode, string(body))
	}

	login(t, env, client)

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/admin/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status %d: %s", resp.StatusCode, string(body))
	}

	resp, _ = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/admin/logout", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d", resp.StatusCode)
	}
	resp, _ = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/admin/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestE2ECampaignSlugConflict(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := newClient(t)
	login(t, env, client)

	payload := map[string]interface{}{"name": "Verão", "slug": "verao", "clientId": "77", "functionId": "12", "professions": []string{"Motorista"}}
	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/admin/campaigns", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create campaign status %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/admin/campaigns", payload)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate slug, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/campaigns/verao", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public campaign status %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EProposalLifecycle(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	admin := newClient(t)
	login(t, env, admin)

	resp, body := requestJSON(t, admin, http.MethodPost, env.server.URL+"/api/admin/campaigns", map[string]interface{}{
		"name": "Verão", "slug": "verao", "clientId": "77", "functionId": "12",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create campaign status %d: %s", resp.StatusCode, string(body))
	}
	var campaign campaignResponse
	if err := json.Unmarshal(body, &campaign); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}

	public := newClient(t)

	invalid := proposalPayload(campaign.ID, "111.111.111-11")
	resp, body = requestJSON(t, public, http.MethodPost, env.server.URL+"/api/proposals", invalid)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid cpf, got %d: %s", resp.StatusCode, string(body))
	}
	var verr errorEnvelope
	if err := json.Unmarshal(body, &verr); err != nil {
		t.Fatalf("decode validation error: %v", err)
	}
	if verr.Error.Fields["cpf"] == "" {
		t.Fatalf("expected cpf field error, got %v", verr.Error.Fields)
	}

	resp, body = requestJSON(t, public, http.MethodPost, env.server.URL+"/api/proposals", proposalPayload(campaign.ID, "529.982.247-25"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status %d: %s", resp.StatusCode, string(body))
	}
	var submitted submitResponse
	if err := json.Unmarshal(body, &submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	if submitted.Status != "pending_documents" || submitted.UploadPath != "/"+submitted.UploadToken {
		t.Fatalf("unexpected submit response: %+v", submitted)
	}

	uploadURL := env.server.URL + "/api/uploads/" + submitted.UploadToken
	resp, body = uploadFile(t, public, uploadURL+"/documents", "identidade_frente", "rg.pdf", []byte("%PDF-1.4 front"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status %d: %s", resp.StatusCode, string(body))
	}
	resp, body = uploadFile(t, public, uploadURL+"/documents", "passaporte", "p.pdf", []byte("x"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, public, http.MethodPost, uploadURL+"/finalize", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finalize status %d: %s", resp.StatusCode, string(body))
	}

	detailsURL := env.server.URL + "/api/admin/proposals/" + submitted.ID
	var details detailsResponse
	waitFor(t, "crm sync and notifications", func() bool {
		resp, body := requestJSON(t, admin, http.MethodGet, detailsURL, nil)
		if resp.StatusCode != http.StatusOK {
			return false
		}
		details = detailsResponse{}
		if err := json.Unmarshal(body, &details); err != nil {
			return false
		}
		return details.Proposal.CRMSynced && len(details.Notifications) == 2
	})

	if details.Proposal.Status != "completed" {
		t.Fatalf("expected completed after sync, got %s", details.Proposal.Status)
	}
	if len(details.SyncAttempts) != 1 || details.SyncAttempts[0].Trigger != "finalize" {
		t.Fatalf("unexpected sync attempts: %+v", details.SyncAttempts)
	}

	env.recorder.mu.Lock()
	fields := env.recorder.fields[0]
	files := env.recorder.files[0]
	env.recorder.mu.Unlock()

	if got := fields["Cpf"]; len(got) != 1 || got[0] != "52998224725" {
		t.Fatalf("unexpected Cpf field: %v", got)
	}
	if got := fields["ContractId"]; len(got) != 1 || got[0] != "77" {
		t.Fatalf("unexpected ContractId field: %v", got)
	}
	if files["DocumentFront"] != "rg.pdf" {
		t.Fatalf("unexpected DocumentFront file: %q", files["DocumentFront"])
	}
	if files["ProofOfResidence"] != "placeholder.txt" {
		t.Fatalf("expected placeholder for ProofOfResidence, got %q", files["ProofOfResidence"])
	}

	env.recorder.failing.Store(true)
	resp, body = requestJSON(t, admin, http.MethodPost, detailsURL+"/sync", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 from failing crm, got %d: %s", resp.StatusCode, string(body))
	}
	if !strings.Contains(string(body), "CPF já cadastrado") {
		t.Fatalf("expected crm detail in body, got %s", string(body))
	}
}

func TestE2EDuplicateCleanup(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	admin := newClient(t)
	login(t, env, admin)

	public := newClient(t)
	var ids []string
	for i := 0; i < 3; i++ {
		resp, body := requestJSON(t, public, http.MethodPost, env.server.URL+"/api/proposals", proposalPayload("", "529.982.247-25"))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("submit status %d: %s", resp.StatusCode, string(body))
		}
		var submitted submitResponse
		if err := json.Unmarshal(body, &submitted); err != nil {
			t.Fatalf("decode submit: %v", err)
		}
		ids = append(ids, submitted.ID)
		time.Sleep(10 * time.Millisecond)
	}

	dedupeURL := env.server.URL + "/api/admin/campaigns/" + campaignsdomain.Uncategorized + "/dedupe"
	resp, body := requestJSON(t, admin, http.MethodPost, dedupeURL+"?dry_run=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dry run status %d: %s", resp.StatusCode, string(body))
	}
	var preview proposalsdomain.DuplicateCleanupReport
	if err := json.Unmarshal(body, &preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if preview.DeletedCount != 0 || len(preview.Records) != 2 {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	resp, body = requestJSON(t, admin, http.MethodPost, dedupeURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cleanup status %d: %s", resp.StatusCode, string(body))
	}
	var report proposalsdomain.DuplicateCleanupReport
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.DeletedCount != 2 {
		t.Fatalf("expected 2 deletions, got %d", report.DeletedCount)
	}

	resp, _ = requestJSON(t, admin, http.MethodGet, env.server.URL+"/api/admin/proposals/"+ids[2], nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("newest proposal should survive, got %d", resp.StatusCode)
	}
	resp, _ = requestJSON(t, admin, http.MethodGet, env.server.URL+"/api/admin/proposals/"+ids[0], nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("oldest proposal should be gone, got %d", resp.StatusCode)
	}
}
