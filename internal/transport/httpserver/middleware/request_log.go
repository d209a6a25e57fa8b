package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"coop-intake-go/internal/transport/httpserver/handler/common"
	"coop-intake-go/pkg/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRequestLogger logs one line per request through log. Upload tokens in
// the path are masked; the query string is never logged.
func NewRequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&requestLogFormatter{log: log})
}

type requestLogFormatter struct {
	log logger.Logger
}

func (f *requestLogFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &requestLogEntry{
		log: f.log.With(
			"method", r.Method,
			"path", maskUploadToken(r.URL.Path),
			"remote", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
		),
	}
}

type requestLogEntry struct {
	log logger.Logger
}

func (e *requestLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	args := []any{"status", status, "bytes", bytes, "duration_ms", elapsed.Milliseconds()}
	switch {
	case status >= http.StatusInternalServerError:
		e.log.Error("http request", args...)
	default:
		e.log.Info("http request", args...)
	}
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.log.InternalError("http request panicked", fmt.Errorf("%v", v), "stack", string(stack))
}

func maskUploadToken(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "uploads" && parts[i+1] != "" {
			parts[i+1] = common.MaskToken(parts[i+1])
		}
	}
	return strings.Join(parts, "/")
}
