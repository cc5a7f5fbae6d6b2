package dto

import "net/http"

// Error code constants, format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists     = "ERR_ALREADY_EXISTS"
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeReferenceNotFound = "ERR_REFERENCE_NOT_FOUND"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Infrastructure error codes
const (
	ErrCodeStoreUnavailable = "ERR_STORE_UNAVAILABLE"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout    = "ERR_RENDER_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeReferenceNotFound: http.StatusNotFound,
	ErrCodeAlreadyExists:     http.StatusConflict,
	ErrCodeConflict:          http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
	ErrCodeRenderFailed:     http.StatusBadGateway,
	ErrCodeRenderTimeout:    http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting
// to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates domain error codes into the wire codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"REFERENCE_NOT_FOUND":  ErrCodeReferenceNotFound,
	"CONCURRENCY_CONFLICT": ErrCodeConflict,
	"INVALID_STATE":        ErrCodeInvalidState,
	"STORE_UNAVAILABLE":    ErrCodeStoreUnavailable,

	// Domain validation failures all surface as 400 validation errors.
	"INVALID_INPUT":    ErrCodeValidation,
	"INVALID_REF":      ErrCodeValidation,
	"INVALID_NAME":     ErrCodeValidation,
	"INVALID_PRICE":    ErrCodeValidation,
	"INVALID_WEIGHT":   ErrCodeValidation,
	"EMPTY_ORDER":      ErrCodeValidation,
	"BILLING_MISMATCH": ErrCodeValidation,
}

// NormalizeErrorCode converts a domain error code to its wire format; codes
// already in wire format (or unknown) pass through unchanged
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
