package usecase

import (
	"strings"

	"shop-support-agent/internal/domain"
	"shop-support-agent/internal/knowledge"
)

// ShopProfile holds the identity constants quoted in the instruction block.
type ShopProfile struct {
	Name     string
	URL      string
	Location string
}

type promptContext struct {
	shop      ShopProfile
	knowledge knowledge.Mapping
}

// buildPromptMessages returns the instruction block, then every history entry
// verbatim and in order, then the new user message. Nothing is dropped or
// truncated, so the result always has len(history)+2 entries.
//
// The instruction block is sent with the user role rather than a system role;
// providers receive it as the opening user turn.
func buildPromptMessages(ctx promptContext, history []domain.ChatMessage, userMessage string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: buildInstructionPrompt(ctx),
	})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: userMessage,
	})
	return messages
}

func buildInstructionPrompt(ctx promptContext) string {
	return strings.Join([]string{
		"You are an AI-powered, helpful, and polite customer support chatbot for an E-commerce platform.",
		"Your main responsibilities are: answering order status, return policy, and product recommendation questions.",
		"Shop Name: " + ctx.shop.Name + ".",
		"Shop URL: " + ctx.shop.URL + ".",
		"Shop Location: " + ctx.shop.Location + ".",
		"",
		"CRITICAL INSTRUCTION: Use the following EXTERNAL_DATA to answer factual questions.",
		"You must intelligently parse the user's request (e.g., find an order ID like ORD123, or a keyword like 'return policy')",
		"and provide the specific information found in this JSON object:",
		"",
		"EXTERNAL_DATA:",
		ctx.knowledge.Pretty(),
		"",
		behaviorRules(),
	}, "\n")
}

func behaviorRules() string {
	return strings.Join([]string{
		"Answer factual questions strictly from EXTERNAL_DATA.",
		"If you are greeting the user or responding to a general phrase like 'how are you', respond conversationally.",
		"If you cannot find the answer in the provided data, politely state that you cannot assist with that specific query.",
	}, "\n")
}
