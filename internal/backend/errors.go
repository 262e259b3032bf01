package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnauthorized means the upstream rejected the session token.
	ErrUnauthorized = errors.New("upstream session expired")
	// ErrInvalidCredentials is a 401 on sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("upstream resource not found")
	ErrNoToken            = errors.New("sign-in response has no AUTH_KEY")
)

// APIError is any other non-2xx upstream answer.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s %s: %d", e.Method, e.Path, e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsValidation reports upstream 400/422 answers, which carry a message for
// the operator.
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

// upstreamMessage pulls "message" out of an error body. Validation pipes
// answer with a list of messages.
func upstreamMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	msg := gjson.GetBytes(body, "message")
	if msg.IsArray() {
		parts := make([]string, 0, len(msg.Array()))
		for _, m := range msg.Array() {
			parts = append(parts, m.String())
		}
		return strings.Join(parts, "; ")
	}
	if msg.Exists() {
		return msg.String()
	}
	return gjson.GetBytes(body, "error").String()
}
