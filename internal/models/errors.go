package models

import (
	"fmt"
	"net/http"
)

// AppError carries the HTTP class of a failure along with the message shown
// to the client. The wrapped cause is only ever logged.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
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

// Is matches on status and message so that a wrapped copy of a sentinel
// still satisfies errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Status == e.Status && t.Message == e.Message
}

// Wrap returns a copy of e with cause attached.
func (e *AppError) Wrap(cause error) *AppError {
	return &AppError{Status: e.Status, Message: e.Message, Err: cause}
}

var (
	ErrMissingFields   = NewAppError(http.StatusBadRequest, "Missing required fields")
	ErrInvalidCartItem = NewAppError(http.StatusBadRequest, "Invalid cart item")
	ErrAmountMismatch  = NewAppError(http.StatusBadRequest, "Amount does not match cart total")
	ErrInvalidStatus   = NewAppError(http.StatusBadRequest, "Invalid order status")
	ErrImageRequired   = NewAppError(http.StatusBadRequest, "Image is required")
	ErrInvalidImage    = NewAppError(http.StatusBadRequest, "Uploaded file must be an image")

	ErrUnauthorized       = NewAppError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden          = NewAppError(http.StatusForbidden, "You are not allowed to perform this action")
	ErrNotRestaurantOwner = NewAppError(http.StatusForbidden, "Restaurant owner privileges required")
	ErrMenuNotOwned       = NewAppError(http.StatusForbidden, "Menu does not belong to your restaurant")

	ErrRestaurantNotFound   = NewAppError(http.StatusNotFound, "Restaurant not found")
	ErrOrderNotFound        = NewAppError(http.StatusNotFound, "Order not found")
	ErrMenuNotFound         = NewAppError(http.StatusNotFound, "Menu not found")
	ErrUserNotFound         = NewAppError(http.StatusNotFound, "User not found")
	ErrOwnerRequestNotFound = NewAppError(http.StatusNotFound, "Owner request not found")

	ErrRestaurantExists = NewAppError(http.StatusBadRequest, "User restaurant already exists")
	ErrConcurrentUpdate = NewAppError(http.StatusConflict, "Order was updated by another request, please retry")

	ErrOTPExpired        = NewAppError(http.StatusBadRequest, "OTP has expired, please request a new one")
	ErrOTPInvalid        = NewAppError(http.StatusBadRequest, "Invalid OTP")
	ErrAlreadyOwner      = NewAppError(http.StatusBadRequest, "You are already a restaurant owner")
	ErrRequestPending    = NewAppError(http.StatusBadRequest, "Verification pending, check your email or resend the code")
	ErrRequestInReview   = NewAppError(http.StatusBadRequest, "Request is awaiting admin approval")
	ErrRequestNotPending = NewAppError(http.StatusBadRequest, "No pending verification for this request")
	ErrRequestNotReview  = NewAppError(http.StatusBadRequest, "Only verified requests can be approved or rejected")
	ErrInvalidDecision   = NewAppError(http.StatusBadRequest, "Status must be approved or rejected")
	ErrTooManyRequests   = NewAppError(http.StatusTooManyRequests, "Please wait before requesting a new code")

	ErrPaymentDeclined  = NewAppError(http.StatusPaymentRequired, "Payment could not be processed")
	ErrPaymentTimeout   = NewAppError(http.StatusRequestTimeout, "Payment service temporarily unavailable")
	ErrStoreUnavailable = NewAppError(http.StatusServiceUnavailable, "Database temporarily unavailable")
	ErrEmailFailed      = NewAppError(http.StatusInternalServerError, "Failed to send verification code")
)
