// Package oas holds the wire types and chi bindings for the greetings HTTP API.
//
// The shapes follow api/openapi.yaml. Optional request fields are
// nullable.Nullable so that "omitted" and "null" stay distinguishable.
package oas

import "github.com/oapi-codegen/nullable"

// Greeting is a stored greeting as returned to clients.
type Greeting struct {
	Id      int64  `json:"id"`
	Message string `json:"message"`
}

// SaveGreetingRequest is the body of POST /greetings.
// An omitted or null Id requests creation.
type SaveGreetingRequest struct {
	Id      nullable.Nullable[int64] `json:"id,omitempty"`
	Message string                   `json:"message"`
}

// SaveGreetingJSONRequestBody defines body for SaveGreeting for application/json ContentType.
type SaveGreetingJSONRequestBody = SaveGreetingRequest

// IdempotencyKey is the Idempotency-Key header value.
type IdempotencyKey = string

// SaveGreetingParams defines parameters for SaveGreeting.
type SaveGreetingParams struct {
	IdempotencyKey *IdempotencyKey `json:"Idempotency-Key,omitempty"`
}

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Error struct {
		Code      string                            `json:"code"`
		Message   string                            `json:"message"`
		Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
		RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
	} `json:"error"`
}
