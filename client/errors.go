package client

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is the single error shape returned by Client. StatusCode is zero
// when no response was received (network failure, timeout, cancelled
// context); Response then is nil.
type Error struct {
	Message    string
	StatusCode int
	Response   json.RawMessage
}

func (e *Error) Error() string {
	return e.Message
}

// ServerMessage returns the "error" field of the server payload, if any.
func (e *Error) ServerMessage() string {
	var body struct {
		Error string `json:"error"`
	}
	if len(e.Response) == 0 || json.Unmarshal(e.Response, &body) != nil {
		return ""
	}
	return body.Error
}

// IsNotFound reports whether err is a client error for a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
