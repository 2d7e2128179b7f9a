package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RejectionError is a submission the server understood but refused: HTTP 2xx
// with success=false. It is reported as a warning, never as a transport
// failure, and leaves local progress untouched.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "submission rejected"
	}
	return e.Message
}

// FieldErrors is a structured validation failure (HTTP 4xx with a
// field→message payload). All fields aggregate into one multi-line message.
type FieldErrors struct {
	Status int
	Fields map[string][]string
}

func (e *FieldErrors) Error() string {
	lines := make([]string, 0, len(e.Fields))
	for _, field := range e.sortedFields() {
		for _, message := range e.Fields[field] {
			lines = append(lines, fmt.Sprintf("%s: %s", field, message))
		}
	}
	if len(lines) == 0 {
		return "validation failed"
	}
	return strings.Join(lines, "\n")
}

// First returns the first structured error entry, used for 422-class
// responses that surface a single message.
func (e *FieldErrors) First() string {
	for _, field := range e.sortedFields() {
		if messages := e.Fields[field]; len(messages) > 0 {
			return messages[0]
		}
	}
	return "validation failed"
}

func (e *FieldErrors) sortedFields() []string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// TransportError is a network-level failure with no usable response body.
// Resubmitting the same question is always safe.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// parseFieldErrors digs a field→message map out of an error body. Servers
// nest it under either "message" or "errors", with values as a string or a
// list of strings.
func parseFieldErrors(status int, body []byte) *FieldErrors {
	var envelope struct {
		Message json.RawMessage `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	if fields := decodeFieldMap(envelope.Errors); len(fields) > 0 {
		return &FieldErrors{Status: status, Fields: fields}
	}
	if fields := decodeFieldMap(envelope.Message); len(fields) > 0 {
		return &FieldErrors{Status: status, Fields: fields}
	}
	return nil
}

func decodeFieldMap(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}

	var multi map[string][]string
	if err := json.Unmarshal(raw, &multi); err == nil {
		return multi
	}

	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil {
		fields := make(map[string][]string, len(single))
		for field, message := range single {
			fields[field] = []string{message}
		}
		return fields
	}

	return nil
}

// messageText extracts a plain message string from a response body, if one
// is present at all.
func messageText(body []byte) string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(envelope.Message, &text); err != nil {
		return ""
	}
	return text
}

// InterpretFailure maps a non-2xx response to the client error taxonomy:
// a structured field map when one can be parsed, a transport failure
// otherwise.
func InterpretFailure(status int, body []byte) error {
	if fields := parseFieldErrors(status, body); fields != nil {
		return fields
	}
	if text := messageText(body); text != "" && status < 500 {
		return &RejectionError{Message: text}
	}
	return &TransportError{Err: fmt.Errorf("unexpected status %d", status)}
}
