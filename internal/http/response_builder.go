// Package http provides the JSON API server and handlers.
//
// This file implements a builder for API responses so every handler
// emits the same envelope shape and content type.
package http

import (
	"encoding/json"
	"net/http"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    map[string]any
}

// NewJSONResponse creates a response builder with a 200 status and an
// empty payload.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
		payload:    make(map[string]any),
	}
}

// Status sets the HTTP status code.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom response header.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Success sets the success flag in the payload.
func (b *JSONResponseBuilder) Success(ok bool) *JSONResponseBuilder {
	b.payload["success"] = ok
	return b
}

// Message sets the message field in the payload.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.payload["message"] = msg
	return b
}

// Field adds an arbitrary payload field.
func (b *JSONResponseBuilder) Field(name string, value any) *JSONResponseBuilder {
	b.payload[name] = value
	return b
}

// Write sends the built response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)

	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// OKResponse creates a success response with a message.
func OKResponse(message string) *JSONResponseBuilder {
	return NewJSONResponse().Success(true).Message(message)
}

// CreatedResponse creates a 201 success response with a message.
func CreatedResponse(message string) *JSONResponseBuilder {
	return OKResponse(message).Status(http.StatusCreated)
}

// ErrorResponse creates a failure response with the given status.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Success(false).Message(message)
}

// BadRequestError creates a 400 Bad Request response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnauthorizedError creates a 401 Unauthorized response.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

// ConflictError creates a 409 Conflict response.
func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
