package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
)

// normalizeError flattens the error body shapes common across Python REST
// frameworks ({detail}, {errors}, {message}) into one readable message, then
// maps the HTTP status onto a domain code.
func normalizeError(op string, status int, contentType string, raw []byte) error {
	message := extractMessage(contentType, raw)
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	cause := fmt.Errorf("restaurant backend %s: status %d", op, status)
	return pkgerrors.Wrap(codeForStatus(status), cause, message)
}

func extractMessage(contentType string, raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return ""
	}
	if !strings.Contains(contentType, "application/json") {
		return body
	}

	var payload struct {
		Detail  json.RawMessage   `json:"detail"`
		Errors  []json.RawMessage `json:"errors"`
		Message string            `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return body
	}

	var messages []string
	messages = append(messages, detailMessages(payload.Detail)...)
	for _, entry := range payload.Errors {
		if msg := itemMessage(entry); msg != "" {
			messages = append(messages, msg)
		}
	}
	if payload.Message != "" {
		messages = append(messages, payload.Message)
	}
	return strings.Join(messages, "\n")
}

func detailMessages(detail json.RawMessage) []string {
	trimmed := strings.TrimSpace(string(detail))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(detail, &items); err != nil {
			return []string{trimmed}
		}
		var messages []string
		for _, item := range items {
			if msg := itemMessage(item); msg != "" {
				messages = append(messages, msg)
			}
		}
		return messages
	}
	if msg := itemMessage(detail); msg != "" {
		return []string{msg}
	}
	return nil
}

// itemMessage handles entries that are plain strings or objects carrying a
// msg/message field; anything else is kept as raw JSON.
func itemMessage(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	return trimmed
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeUpstream
	}
}
