package email

import (
	"net/url"
	"strings"
)

// VerifyEmailURL is the frontend page that posts the token back to /verify-email.
func VerifyEmailURL(origin, token, email string) string {
	return link(origin, "/user/verify-email", token, email)
}

// ResetPasswordURL is the frontend page that posts the token back to /reset-password.
func ResetPasswordURL(origin, token, email string) string {
	return link(origin, "/user/reset-password", token, email)
}

func link(origin, path, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return strings.TrimRight(origin, "/") + path + "?" + q.Encode()
}
