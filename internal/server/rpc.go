package server

import (
	"context"
	"encoding/json"
	"errors"

	fiber "github.com/gofiber/fiber/v2"
)

// RPCRequest defines the structure for RPC-style API requests
type RPCRequest struct {
	// Method is the operation to perform (e.g., "find_nearby")
	Method string `json:"method"`

	// Params contains the operation parameters
	Params json.RawMessage `json:"params,omitempty"`

	// ID is an optional request identifier that will be echoed back in the response
	ID string `json:"id,omitempty"`
}

// RPCResponse defines the structure for RPC-style API responses
type RPCResponse struct {
	// Data contains the operation result
	Data any `json:"data,omitempty"`

	// Error contains error information if the operation failed
	Error *RPCError `json:"error,omitempty"`

	// ID echoes back the request ID if provided
	ID string `json:"id,omitempty"`

	// Success indicates if the operation was successful
	Success bool `json:"success"`
}

// RPCError defines the structure for RPC errors
type RPCError struct {
	// Code mirrors the HTTP status
	Code int `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Data contains additional error details (optional)
	Data any `json:"data,omitempty"`
}

// ErrNotFound marks a lookup that found nothing.
var ErrNotFound = errors.New("not found")

// errUnavailable marks an optional capability that was not configured.
var errUnavailable = errors.New("not configured")

type validator interface {
	Validate() error
}

// noParams is used by methods that take no parameters.
type noParams struct{}

func (noParams) Validate() error { return nil }

// parseParams is a helper function to parse RPC parameters into a specific struct type
func parseParams[T any](req RPCRequest) (T, error) {
	var params T
	if len(req.Params) == 0 || string(req.Params) == "null" {
		return params, nil
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return params, err
	}
	return params, nil
}

// call parses and validates P, runs fn and writes the RPC envelope.
func call[P validator](c *fiber.Ctx, req RPCRequest, notFound string, fn func(ctx context.Context, p P) (any, error)) error {
	params, err := parseParams[P](req)
	if err != nil {
		return respondWithRPCError(c, fiber.StatusBadRequest, ErrMsgInvalidParams, err.Error(), req.ID)
	}

	if err := params.Validate(); err != nil {
		return respondWithRPCError(c, fiber.StatusBadRequest, err.Error(), nil, req.ID)
	}

	data, err := fn(c.UserContext(), params)
	switch {
	case errors.Is(err, ErrNotFound):
		return respondWithRPCError(c, fiber.StatusNotFound, notFound, nil, req.ID)
	case errors.Is(err, errUnavailable):
		return respondWithRPCError(c, fiber.StatusNotImplemented, err.Error(), nil, req.ID)
	case err != nil:
		return respondWithRPCError(c, fiber.StatusInternalServerError, ErrMsgInternal, err.Error(), req.ID)
	}

	return c.JSON(RPCResponse{
		Data:    data,
		Success: true,
		ID:      req.ID,
	})
}

// Helper to create a standardized RPC error response
func respondWithRPCError(c *fiber.Ctx, httpCode int, message string, data any, id string) error {
	return c.Status(httpCode).JSON(RPCResponse{
		Error: &RPCError{
			Code:    httpCode,
			Message: message,
			Data:    data,
		},
		Success: false,
		ID:      id,
	})
}
