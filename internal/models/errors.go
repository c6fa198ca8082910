package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the trust and entitlement engine.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidState    = "INVALID_STATE"
	CodeForbidden       = "FORBIDDEN"
	CodeAlreadyClaimed  = "ALREADY_CLAIMED"
	CodeAlreadyRedeemed = "ALREADY_REDEEMED"
	CodeExpired         = "EXPIRED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a typed application error. Services return these so
// callers can branch on Code instead of matching message strings.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidState,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewAlreadyClaimedError(offerID uint) *AppError {
	return &AppError{
		Code:    CodeAlreadyClaimed,
		Message: fmt.Sprintf("offer %d already claimed by this user", offerID),
	}
}

func NewAlreadyRedeemedError(code string) *AppError {
	return &AppError{
		Code:    CodeAlreadyRedeemed,
		Message: fmt.Sprintf("redemption code %s already redeemed", code),
	}
}

func NewExpiredError(message string) *AppError {
	return &AppError{
		Code:    CodeExpired,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// statusByCode maps engine error codes to HTTP statuses.
var statusByCode = map[string]int{
	CodeValidation:      fiber.StatusBadRequest,
	CodeNotFound:        fiber.StatusNotFound,
	CodeInvalidState:    fiber.StatusConflict,
	CodeForbidden:       fiber.StatusForbidden,
	CodeAlreadyClaimed:  fiber.StatusConflict,
	CodeAlreadyRedeemed: fiber.StatusConflict,
	CodeExpired:         fiber.StatusGone,
	CodeUnauthorized:    fiber.StatusUnauthorized,
	CodeRateLimited:     fiber.StatusTooManyRequests,
	CodeInternal:        fiber.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for an AppError code.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// RespondWithError creates a standardized error response.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
