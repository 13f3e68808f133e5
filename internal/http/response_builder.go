// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every body is an object carrying a "success" flag, an optional "message"
// and whatever extra fields the handler adds.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cashflow/internal/core"
)

const unexpectedErrorMessage = "UnexpectedError"

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	fields     map[string]any
	headers    map[string]string
}

// NewJSONResponse creates a successful response with 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		fields:     map[string]any{"success": true},
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code. Codes of 400 and above flip the
// success flag.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	b.fields["success"] = code < http.StatusBadRequest
	return b
}

func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.fields["message"] = msg
	return b
}

// Data sets the "data" field.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	return b.Field("data", v)
}

// Field adds an arbitrary top-level field.
func (b *JSONResponseBuilder) Field(name string, v any) *JSONResponseBuilder {
	b.fields[name] = v
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.fields); err != nil {
		slog.Error("Failed to encode JSON response", "error", err, "status_code", b.statusCode)
	}
}

// Created is a 201 response with a message and the created entity.
func Created(message string, data any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Message(message).Data(data)
}

// ErrorResponse creates a failed response with the given status and message.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnauthorizedError creates a 401 Unauthorized error response.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 response. The message never carries
// internal detail.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, unexpectedErrorMessage)
}

// statusFor maps a domain error class to its HTTP status and the message
// used when the error carries none.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, core.ErrProtected):
		return http.StatusBadRequest, "operation not allowed"
	case errors.Is(err, core.ErrConflict):
		return http.StatusBadRequest, "entity is in use"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, core.ErrAuth):
		return http.StatusUnauthorized, core.ErrSessionRequired.Error()
	default:
		return http.StatusInternalServerError, unexpectedErrorMessage
	}
}

// FromError builds the failure response for err. Conflicts also carry the
// usage counts that block the operation.
func FromError(err error) *JSONResponseBuilder {
	status, fallback := statusFor(err)
	if status == http.StatusInternalServerError {
		return InternalServerError()
	}

	b := ErrorResponse(status, core.Message(err, fallback))
	var conflict *core.ConflictError
	if errors.As(err, &conflict) {
		b.Field("expense", conflict.Usage.Expense).
			Field("income", conflict.Usage.Income).
			Field("budget", conflict.Usage.Budget)
	}
	return b
}
