package handlers

import "time"

const (
	oauthStateCookie    = "oauth_state"
	oauthProviderCookie = "oauth_provider"
	oauthCookieTTL      = 10 * time.Minute

	maxBodyBytes = 1 << 20

	ErrInvalidRequestBody  = "Invalid request body"
	ErrInvalidID           = "Invalid id"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
)
