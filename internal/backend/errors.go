package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResponse reports a successful backend response that is not JSON
var ErrInvalidResponse = errors.New("invalid backend response")

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(string(e.Body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, msg)
}

// JSONBody returns the backend error body as JSON. Bodies that are not JSON
// are wrapped as {"error": text}, with "Backend error" for an empty body.
func (e *APIError) JSONBody() json.RawMessage {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	text := string(e.Body)
	if text == "" {
		text = "Backend error"
	}
	b, _ := json.Marshal(map[string]string{"error": text})
	return b
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
