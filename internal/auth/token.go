package auth

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is set by the storefront web client after login.
const AccessTokenCookie = "access_token"

// ExtractAccessToken returns the bearer token of r. The Authorization header
// wins over the cookie so API clients can act independently of a browser
// session; the scheme is matched case-insensitively.
func ExtractAccessToken(r *http.Request) string {
	if scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " "); ok {
		if strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
