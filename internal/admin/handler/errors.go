package handler

const (
	errInternalServer = "Internal server error"
	errRowNotFound    = "Row not found for email"
	errBadRequest     = "Invalid request body"
	errTokenInvalid   = "Token is invalid or expired"
)
