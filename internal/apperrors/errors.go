package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrInvalidAmount       = errors.New("amount is invalid")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentNotSubmitted = errors.New("payment was never submitted to the gateway")
	ErrGateway             = errors.New("payment gateway rejected the request")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")

	ErrServiceNotFound     = errors.New("service not found or inactive")
	ErrQuantityOutOfRange  = errors.New("quantity is out of service limits")
	ErrOrderNotFound       = errors.New("order not found")
	ErrSupplier            = errors.New("supplier rejected the request")
	ErrSupplierUnavailable = errors.New("supplier unavailable")

	ErrBalanceInsufficient = errors.New("insufficient balance")

	ErrSettingNotFound = errors.New("setting not found")
	ErrNotConfigured   = errors.New("required credential is not configured")
)
