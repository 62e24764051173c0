package errors

import "net/http"

// NoToken creates a new AppError for a request without a bearer token.
func NoToken() *AppError {
	return &AppError{
		Code: ErrCodeNoToken, Message: "No token provided.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates a new AppError for a token that failed parsing,
// signature or expiry checks.
func InvalidToken() *AppError {
	return &AppError{
		Code: ErrCodeInvalidToken, Message: "Invalid token.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenRevoked creates a new AppError for a token invalidated by logout.
func TokenRevoked() *AppError {
	return &AppError{
		Code: ErrCodeTokenRevoked, Message: "Token has been invalidated.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidCredentials creates a new AppError for a password mismatch.
func InvalidCredentials() *AppError {
	return &AppError{
		Code: ErrCodeInvalidCredentials, Message: "Wrong password.",
		HTTPStatus: http.StatusBadRequest,
	}
}

// UserNotFound creates a new AppError for a login with an unknown email.
func UserNotFound() *AppError {
	return &AppError{
		Code: ErrCodeUserNotFound, Message: "User not found.",
		HTTPStatus: http.StatusBadRequest,
	}
}

// DuplicateEmail creates a new AppError for a registration whose email is taken.
func DuplicateEmail() *AppError {
	return &AppError{
		Code: ErrCodeDuplicateEmail, Message: "Email already used.",
		HTTPStatus: http.StatusBadRequest,
	}
}
