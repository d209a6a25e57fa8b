package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"coop-intake-go/internal/domain/proposals"
	"coop-intake-go/pkg/logger"
)

const (
	createPath       = "/api/GuestCooperativeUser/external-create"
	maxErrorBody     = 64 << 10
	maxErrorRunes    = 300
	maxDocumentBytes = 25 << 20
	downloadWorkers  = 4
)

type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	DownloadTimeout   time.Duration
	MaxImageDimension int
	JPEGQuality       int
}

// LocalSource serves document URLs that point at this service's own blob store,
// so they can be read without an HTTP round trip.
type LocalSource interface {
	Owns(url string) bool
	ReadURL(ctx context.Context, url string) ([]byte, error)
}

// Error is a non-2xx CRM response.
type Error struct {
	StatusCode  int
	Body        string
	Detail      string
	PayloadSize int64
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if runes := []rune(msg); len(runes) > maxErrorRunes {
		msg = string(runes[:maxErrorRunes]) + "..."
	}
	if e.StatusCode == http.StatusRequestEntityTooLarge {
		return fmt.Sprintf("crm rejected payload of %s (status 413): %s", formatSize(e.PayloadSize), msg)
	}
	return fmt.Sprintf("crm returned status %d: %s", e.StatusCode, msg)
}

var errDocumentTooLarge = errors.New("document exceeds size limit")

type Client struct {
	cfg         Config
	baseURL     string
	client      *http.Client
	download    *http.Client
	cities      CityResolver
	local       LocalSource
	maxDocument int64
	log         logger.Logger
}

func NewClient(cfg Config, cities CityResolver, local LocalSource, log logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	if cfg.MaxImageDimension == 0 {
		cfg.MaxImageDimension = 1280
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 80
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		cfg:         cfg,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client:      &http.Client{Timeout: cfg.Timeout},
		download:    &http.Client{Timeout: cfg.DownloadTimeout},
		cities:      cities,
		local:       local,
		maxDocument: maxDocumentBytes,
		log:         log,
	}
}

type attachment struct {
	Field    string
	Filename string
	Data     []byte
}

// Submit builds the multipart payload for one proposal and posts it. The
// outcome carries the payload size and HTTP status even when err is not nil.
func (c *Client) Submit(ctx context.Context, sub proposals.Submission) (proposals.SyncOutcome, error) {
	var outcome proposals.SyncOutcome
	if c.baseURL == "" || c.cfg.APIKey == "" {
		return outcome, errors.New("crm not configured")
	}

	files, err := c.collectFiles(ctx, sub.Proposal.ID, sub.Documents)
	if err != nil {
		return outcome, err
	}

	body, contentType, err := buildPayload(textFields(sub, c.cities), files)
	if err != nil {
		return outcome, fmt.Errorf("build crm payload: %w", err)
	}
	outcome.PayloadSize = int64(body.Len())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPath, body)
	if err != nil {
		return outcome, fmt.Errorf("create crm request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("X-API-KEY", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return outcome, fmt.Errorf("send crm request: %w", err)
	}
	defer resp.Body.Close()
	outcome.HTTPStatus = resp.StatusCode

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return outcome, &Error{
			StatusCode:  resp.StatusCode,
			Body:        string(raw),
			Detail:      errorDetail(raw),
			PayloadSize: outcome.PayloadSize,
		}
	}

	c.log.Debug("crm accepted proposal", "proposal_id", sub.Proposal.ID, "files", len(files), "payload_size", outcome.PayloadSize)
	return outcome, nil
}

// collectFiles downloads the latest document of every mapped type. Documents
// that cannot be fetched are skipped; missing mandatory fields get an empty
// placeholder.
func (c *Client) collectFiles(ctx context.Context, proposalID string, docs []proposals.Document) ([]attachment, error) {
	selected := latestPerType(docs)
	results := make([]*attachment, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)
	for i, doc := range selected {
		g.Go(func() error {
			data, err := c.fetch(gctx, doc.URL)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.log.Warn("crm document download failed", "proposal_id", proposalID, "type", doc.Type, "error", err)
				return nil
			}

			name := doc.Filename
			if name == "" {
				name = string(doc.Type) + filepath.Ext(doc.URL)
			}
			if converted, newName, ok := normalizeImage(data, name, c.cfg.MaxImageDimension, c.cfg.JPEGQuality); ok {
				data, name = converted, newName
			}

			results[i] = &attachment{Field: fileFields[doc.Type], Filename: name, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]attachment, 0, len(results)+len(mandatoryFileFields))
	present := make(map[string]bool, len(results))
	for _, file := range results {
		if file == nil {
			continue
		}
		files = append(files, *file)
		present[file.Field] = true
	}
	for _, field := range mandatoryFileFields {
		if !present[field] {
			files = append(files, attachment{Field: field, Filename: placeholderName, Data: []byte{}})
		}
	}
	return files, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if c.local != nil && c.local.Owns(url) {
		data, err := c.local.ReadURL(ctx, url)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > c.maxDocument {
			return nil, fmt.Errorf("read %s: %w", url, errDocumentTooLarge)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.download.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > c.maxDocument {
		return nil, fmt.Errorf("download %s: %w", url, errDocumentTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDocument+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxDocument {
		return nil, fmt.Errorf("download %s: %w", url, errDocumentTooLarge)
	}
	return data, nil
}

func buildPayload(fields []field, files []attachment) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range fields {
		if err := writer.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     file.Field,
			"filename": file.Filename,
		}))
		header.Set("Content-Type", fileContentType(file))

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func fileContentType(file attachment) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename))); byExt != "" {
		return byExt
	}
	if len(file.Data) == 0 {
		return "text/plain"
	}
	return http.DetectContentType(file.Data)
}

// errorDetail pulls a readable message out of a JSON problem response.
func errorDetail(raw []byte) string {
	var payload struct {
		Title   string              `json:"title"`
		Detail  string              `json:"detail"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	parts := make([]string, 0, 2)
	for _, candidate := range []string{payload.Detail, payload.Message, payload.Title} {
		if candidate != "" {
			parts = append(parts, candidate)
			break
		}
	}
	keys := make([]string, 0, len(payload.Errors))
	for key := range payload.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(payload.Errors[key], ", "))
	}
	return strings.Join(parts, "; ")
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	if size < unit*unit {
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	}
	return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
}
