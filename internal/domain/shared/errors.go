package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across the commerce workflow
const (
	CodeInvalidCartLine     = "INVALID_CART_LINE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInsufficientPoints  = "INSUFFICIENT_POINTS"
	CodeOverRefund          = "OVER_REFUND"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeSaleNotFound        = "SALE_NOT_FOUND"
	CodeTransactionConflict = "TRANSACTION_CONFLICT"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrSaleNotFound        = NewDomainError(CodeSaleNotFound, "Sale not found")
	ErrInvalidRequest      = NewDomainError(CodeInvalidRequest, "Invalid request")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientPoints  = NewDomainError(CodeInsufficientPoints, "Insufficient loyalty points available")
	ErrOverRefund          = NewDomainError(CodeOverRefund, "Refund quantity exceeds refundable quantity")
	ErrTransactionConflict = NewDomainError(CodeTransactionConflict, "Resource was modified by another process")
	ErrStoreUnavailable    = NewDomainError(CodeStoreUnavailable, "Storage backend unavailable")
)
