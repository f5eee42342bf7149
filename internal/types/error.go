package types

import (
	"fmt"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	ValidationError      ErrorCode = "VALIDATION_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"

	Unauthorized          ErrorCode = "UNAUTHORIZED"
	PoolPaused            ErrorCode = "POOL_PAUSED"
	InvalidWindow         ErrorCode = "INVALID_WINDOW"
	AlreadyInitialized    ErrorCode = "ALREADY_INITIALIZED"
	InsufficientFunding   ErrorCode = "INSUFFICIENT_FUNDING"
	UnsupportedAsset      ErrorCode = "UNSUPPORTED_ASSET"
	RewardPoolExhausted   ErrorCode = "REWARD_POOL_EXHAUSTED"
	NonZeroBalanceOnClose ErrorCode = "NON_ZERO_BALANCE_ON_CLOSE"
)

// Error wraps an underlying error with an HTTP status code and a
// machine-readable error code. Services return *Error so the boundary
// layer can map failures onto responses without string matching.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.ErrorCode.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, fmt.Errorf("%s", msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

func NewValidationFailedError(err error) *Error {
	return NewError(http.StatusBadRequest, ValidationError, err)
}
