package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"shop-support-agent/internal/usecase"
)

// Routes returns the HTTP router serving POST /chat. Any origin may call it.
func (h *Handler) Routes(debug bool) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{correlationHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.RealIP)
	r.Use(withCorrelation)
	if debug {
		r.Use(middleware.RequestLogger(requestLogFormatter{}))
	}
	r.Use(middleware.Recoverer)

	r.Post(chatPath, h.serveChat)
	return r
}

func withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, id := correlationFrom(r.Context(), r.Header.Get(correlationHeader))
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) serveChat(w http.ResponseWriter, r *http.Request) {
	reader := io.Reader(r.Body)
	if h.maxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, payload := errorResult(r.Context(), usecase.BodyTooLargeError(tooLarge.Limit, err))
			writeJSON(w, status, payload)
			return
		}
		slog.DebugContext(r.Context(), "unreadable request body", "err", err)
		body = nil
	}

	status, payload := h.chat(r.Context(), body)
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(marshalPayload(payload)); err != nil {
		slog.Error("error writing response", "err", err)
	}
}
