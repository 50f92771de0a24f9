package handler

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handle serves API Gateway proxy events with the same contract as Routes.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, id := correlationFrom(ctx, headerValue(req.Headers, correlationHeader))
	headers := map[string]string{
		"Content-Type":                  "application/json",
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Expose-Headers": correlationHeader,
		correlationHeader:               id,
	}

	if req.HTTPMethod == http.MethodOptions {
		headers["Access-Control-Allow-Methods"] = "POST, OPTIONS"
		headers["Access-Control-Allow-Headers"] = "*"
		headers["Access-Control-Max-Age"] = "300"
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	}
	if strings.TrimSuffix(req.Path, "/") != chatPath {
		return respond(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"}, headers), nil
	}
	if req.HTTPMethod != http.MethodPost {
		return respond(http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED"}, headers), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			slog.DebugContext(ctx, "undecodable request body", "err", err)
			decoded = nil
		}
		body = decoded
	}

	status, payload := h.chat(ctx, body)
	return respond(status, payload, headers), nil
}

func respond(status int, payload any, headers map[string]string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(marshalPayload(payload)),
	}
}

// headerValue looks up a header regardless of the casing API Gateway used.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
