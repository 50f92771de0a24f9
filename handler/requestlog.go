package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogFormatter feeds chi's request logging into slog so access lines
// carry the correlation id like every other record.
type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		ctx:    r.Context(),
		method: r.Method,
		path:   r.URL.Path,
		remote: r.RemoteAddr,
	}
}

type requestLogEntry struct {
	ctx    context.Context
	method string
	path   string
	remote string
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	slog.InfoContext(e.ctx, "http request",
		"method", e.method,
		"path", e.path,
		"remote", e.remote,
		"status", status,
		"bytes", bytes,
		"elapsed", elapsed,
	)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	slog.ErrorContext(e.ctx, "panic serving request", "panic", v, "stack", string(stack))
}
