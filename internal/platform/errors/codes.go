// Package errors provides structured error handling for the bridge.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request validation errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidLimit    Code = "INVALID_LIMIT"
	CodeInvalidOffset   Code = "INVALID_OFFSET"
	CodeInvalidSince    Code = "INVALID_SINCE"
	CodeInvalidAction   Code = "INVALID_ACTION"

	// Resolution errors
	CodeAgentNotFound  Code = "AGENT_NOT_FOUND"
	CodeAgentNotPublic Code = "AGENT_NOT_PUBLIC"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Conversion errors
	CodeConversionFailed Code = "CONVERSION_FAILED"
)

// GRPCCode maps the error code to a gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidArgument, CodeInvalidLimit, CodeInvalidOffset, CodeInvalidSince, CodeInvalidAction:
		return codes.InvalidArgument
	case CodeAgentNotFound, CodeNotFound:
		return codes.NotFound
	case CodeAgentNotPublic:
		return codes.PermissionDenied
	case CodeStorageFailure, CodeConversionFailed:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// HTTPStatus maps the error code to an HTTP status for the boundary layer.
// Visibility denial maps to 403 so peers can distinguish it from plain 404.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeInvalidLimit, CodeInvalidOffset, CodeInvalidSince, CodeInvalidAction:
		return http.StatusBadRequest
	case CodeAgentNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeAgentNotPublic:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
