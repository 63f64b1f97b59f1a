package dto

import (
	"net/http"

	"github.com/pos/backend/internal/domain/shared"
)

// HTTP-layer error codes not produced by the domain
const (
	ErrCodeBadRequest   = "INVALID_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeInvalidCartLine:     http.StatusBadRequest,
	shared.CodeInvalidRequest:      http.StatusBadRequest,
	shared.CodeInsufficientStock:   http.StatusUnprocessableEntity,
	shared.CodeInsufficientPoints:  http.StatusUnprocessableEntity,
	shared.CodeOverRefund:          http.StatusUnprocessableEntity,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeSaleNotFound:        http.StatusNotFound,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeTransactionConflict: http.StatusConflict,
	shared.CodeStoreUnavailable:    http.StatusServiceUnavailable,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
