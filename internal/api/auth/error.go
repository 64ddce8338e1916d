package auth

import (
	"PostureIQ/pkg/response"
	"net/http"
)

var (
	ErrUsernameOrEmailTaken = response.NewError(http.StatusConflict, "Username or email already in use.")
	ErrInvalidCredentials   = response.NewError(http.StatusBadRequest, "Invalid username or password.")
	ErrUserNotFound         = response.NewError(http.StatusNotFound, "User not found.")
	ErrPasswordTooLong      = response.NewError(http.StatusBadRequest, "Password must be at most 72 bytes.")
	ErrUnauthorized         = response.NewError(http.StatusUnauthorized, "Unauthorized, access token invalid or expired.")
)
