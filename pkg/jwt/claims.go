package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims identifies the caller behind a submission or query request.
// Requesters are external systems (a Telegram bot, a CLI, a browser
// front-end) rather than authenticated end users, so a bare subject
// string stands in for whatever identity that caller wants attributed.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}
