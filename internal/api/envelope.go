package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the {success, data, message, error, count} wrapper used by every backend response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`

	err *Error
}

// Ok builds a successful envelope.
func Ok[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Data: data, Message: message}
}

// Fail builds a failed envelope carrying err.
func Fail[T any](err error) Envelope[T] {
	apiErr := AsError(err)
	if apiErr == nil {
		apiErr = &Error{Kind: KindApplication, Message: "Request failed"}
	}
	return Envelope[T]{Success: false, Message: apiErr.Message, Error: apiErr.BackendMessage, err: apiErr}
}

// Err returns nil for a successful envelope and an *Error otherwise.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	return e.failure()
}

// Result splits the envelope into the conventional Go pair.
func (e Envelope[T]) Result() (T, error) {
	if e.Success {
		return e.Data, nil
	}
	var zero T
	return zero, e.failure()
}

func (e Envelope[T]) failure() *Error {
	if e.err != nil {
		return e.err
	}
	return &Error{Kind: KindApplication, Message: firstNonEmpty(e.Message, e.Error, "Request failed"), BackendMessage: e.Error}
}

type wireEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
}

// decodeEnvelope parses a 2xx body. Bodies without a "success" key are legacy raw payloads and are
// wrapped as successful envelopes. When raw is set the whole body is the payload.
func decodeEnvelope[T any](body []byte, raw bool) Envelope[T] {
	var out Envelope[T]
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		out.Success = true
		return out
	}

	if raw || !hasSuccessKey(trimmed) {
		if err := json.Unmarshal(trimmed, &out.Data); err != nil {
			return Fail[T](&Error{Kind: KindDecode, Message: "Unexpected response from server.", Err: fmt.Errorf("decode payload: %w", err)})
		}
		out.Success = true
		return out
	}

	var wire wireEnvelope
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Fail[T](&Error{Kind: KindDecode, Message: "Unexpected response from server.", Err: fmt.Errorf("decode envelope: %w", err)})
	}

	out.Success = wire.Success
	out.Message = wire.Message
	out.Error = wire.Error
	out.Count = wire.Count

	if len(wire.Data) > 0 && !bytes.Equal(wire.Data, []byte("null")) {
		if err := json.Unmarshal(wire.Data, &out.Data); err != nil {
			return Fail[T](&Error{Kind: KindDecode, Message: "Unexpected response from server.", Err: fmt.Errorf("decode data: %w", err)})
		}
	}

	if !out.Success {
		out.err = &Error{
			Kind:           KindApplication,
			Message:        firstNonEmpty(wire.Message, wire.Error, "Request failed"),
			BackendMessage: firstNonEmpty(wire.Error, wire.Message),
		}
	}
	return out
}

func hasSuccessKey(body []byte) bool {
	if body[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	_, ok := probe["success"]
	return ok
}

// backendMessage pulls the human message out of an error body.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return firstNonEmpty(payload.Message, payload.Error)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
