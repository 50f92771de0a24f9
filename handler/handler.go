// Package handler exposes the chat use case over HTTP, either as a chi router
// for a long-running server or as an API Gateway proxy Lambda handler.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shop-support-agent/internal/logging"
	"shop-support-agent/internal/usecase"
)

const (
	chatPath          = "/chat"
	correlationHeader = "X-Correlation-Id"
)

// DefaultMaxBodyBytes matches the API Gateway payload limit.
const DefaultMaxBodyBytes int64 = 10 << 20

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type Handler struct {
	uc           ChatUseCase
	maxBodyBytes int64
}

type Option func(*Handler)

// WithMaxBodyBytes caps the accepted request body size. Zero or negative
// removes the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	h := &Handler{uc: uc, maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// chat runs one request body through validation and the use case and returns
// the status code and JSON payload. Both transports share it.
func (h *Handler) chat(ctx context.Context, body []byte) (int, any) {
	if h.maxBodyBytes > 0 && int64(len(body)) > h.maxBodyBytes {
		return errorResult(ctx, usecase.BodyTooLargeError(h.maxBodyBytes, nil))
	}

	in, err := decodeChatRequest(body)
	if err != nil {
		return errorResult(ctx, err)
	}

	out, err := h.uc.Chat(ctx, in)
	if err != nil {
		return errorResult(ctx, err)
	}
	slog.InfoContext(ctx, "chat answered", "history", len(in.History), "response_len", len(out.Response))
	return http.StatusOK, chatResponse{Response: out.Response}
}

func errorResult(ctx context.Context, err error) (int, any) {
	var ue *usecase.Error
	if errors.As(err, &ue) {
		var status int
		switch ue.Code {
		case usecase.ErrorInvalidInput:
			status = http.StatusBadRequest
		case usecase.ErrorPayloadTooLarge:
			status = http.StatusRequestEntityTooLarge
		}
		if status != 0 {
			slog.DebugContext(ctx, "chat request rejected", "reason", ue.Reason, "err", ue.Err)
			msg := ue.Message
			if msg == "" {
				msg = string(ue.Code)
			}
			return status, errorResponse{Error: msg}
		}
	}

	slog.ErrorContext(ctx, "chat request failed", "err", err)
	return http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}
}

func newCorrelationID(provided string) string {
	if id := strings.TrimSpace(provided); id != "" {
		return id
	}
	return uuid.NewString()
}

func marshalPayload(payload any) []byte {
	b, err := json.Marshal(payload)
	if err != nil {
		return []byte(`{"error":"` + string(usecase.ErrorInternal) + `"}`)
	}
	return b
}

// correlationFrom keeps logging and responses tied to one request.
func correlationFrom(ctx context.Context, provided string) (context.Context, string) {
	id := newCorrelationID(provided)
	return logging.WithCorrelationID(ctx, id), id
}
