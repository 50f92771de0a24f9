package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"shop-support-agent/internal/domain"
	"shop-support-agent/internal/usecase"
)

var jsonNull = []byte("null")

// decodeChatRequest validates a raw /chat body. An absent or unparsable body
// counts as missing fields. history may be null, which means no history.
func decodeChatRequest(body []byte) (usecase.ChatInput, error) {
	var in usecase.ChatInput

	if len(bytes.TrimSpace(body)) == 0 {
		return in, usecase.MissingFieldsError("empty_body", nil)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return in, usecase.MissingFieldsError("unparsable_body", err)
	}

	rawMessage, ok := fields["user_message"]
	if !ok {
		return in, usecase.MissingFieldsError("missing_user_message", nil)
	}
	rawHistory, ok := fields["history"]
	if !ok {
		return in, usecase.MissingFieldsError("missing_history", nil)
	}

	if bytes.Equal(bytes.TrimSpace(rawMessage), jsonNull) {
		return in, usecase.InvalidFieldsError("invalid_user_message", errors.New("user_message is null"))
	}
	if err := json.Unmarshal(rawMessage, &in.UserMessage); err != nil {
		return in, usecase.InvalidFieldsError("invalid_user_message", err)
	}
	if err := json.Unmarshal(rawHistory, &in.History); err != nil {
		return in, usecase.InvalidFieldsError("invalid_history", err)
	}
	if in.History == nil {
		in.History = []domain.ChatMessage{}
	}
	return in, nil
}
