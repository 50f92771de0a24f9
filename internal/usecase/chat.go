package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"shop-support-agent/internal/domain"
	"shop-support-agent/internal/knowledge"
)

// Generator produces a reply for a composed conversation. It never fails;
// failures are already collapsed into fallback text.
type Generator interface {
	Generate(ctx context.Context, messages []domain.ChatMessage) string
}

// ChatService answers one chat turn. It holds no per-request state.
type ChatService struct {
	gen    Generator
	prompt promptContext
}

type ChatInput struct {
	UserMessage string
	History     []domain.ChatMessage
}

type ChatOutput struct {
	Response string
}

// NewChatService creates a ChatService. The knowledge mapping is captured by
// value and never modified afterwards.
func NewChatService(gen Generator, kb knowledge.Mapping, shop ShopProfile) (*ChatService, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	return &ChatService{
		gen: gen,
		prompt: promptContext{
			shop:      shop,
			knowledge: kb,
		},
	}, nil
}

// Chat composes the conversation, generates a reply and trims it.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	messages := buildPromptMessages(s.prompt, in.History, in.UserMessage)
	slog.DebugContext(ctx, "composed prompt", "messages", len(messages), "history", len(in.History))

	reply := s.gen.Generate(ctx, messages)
	return ChatOutput{Response: strings.TrimSpace(reply)}, nil
}
