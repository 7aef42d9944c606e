package coreapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is any non-2xx answer from the backend. Message carries the
// human-readable reason from the conventional detail/message/error fields
// when the body had one; Code is the machine code some endpoint families
// add next to it.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("seva api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("seva api: %d %s", e.Status, http.StatusText(e.Status))
}

// Comparison anchors for errors.Is; only the status participates.
var (
	ErrUnauthorized = &APIError{Status: http.StatusUnauthorized}
	ErrForbidden    = &APIError{Status: http.StatusForbidden}
	ErrNotFound     = &APIError{Status: http.StatusNotFound}
)

// Is matches any APIError with the same status, so call sites can write
// errors.Is(err, coreapi.ErrNotFound) without unpacking the error.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Status == e.Status
}

// envelope is the backend's conventional wrapper: {"success": true, "data":
// {...}}. Older endpoints answer with the bare payload instead, and error
// bodies carry detail or message. Both shapes are decided here, once, so call
// sites never inspect raw JSON.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Err     string          `json:"error"`
}

func (e envelope) reason() string {
	for _, s := range [...]string{e.Detail, e.Message, e.Err} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// decodeBody unwraps the envelope when present and fills out. A body that is
// not an envelope (bare object, bare array) decodes directly.
func decodeBody(b []byte, out any) error {
	if out == nil || len(b) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err == nil && (env.Success != nil || len(env.Data) > 0) {
		if env.Success != nil && !*env.Success {
			return &APIError{Status: http.StatusOK, Code: env.Code, Message: env.reason()}
		}
		if len(env.Data) == 0 {
			return nil
		}
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(b, out)
}

// errorFrom builds the APIError for a non-2xx response body.
func errorFrom(status int, body []byte) *APIError {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if r := env.reason(); r != "" || env.Code != "" {
			return &APIError{Status: status, Code: env.Code, Message: r}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	// non-JSON bodies (proxies, HTML error pages) keep a short excerpt
	if strings.HasPrefix(msg, "<") {
		msg = ""
	}
	return &APIError{Status: status, Message: msg}
}
