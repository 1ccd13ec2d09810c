package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAccessToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		cookie *http.Cookie
		want   string
	}{
		{name: "Header", header: "Bearer header_token", want: "header_token"},
		{name: "HeaderBeatsCookie", header: "Bearer header_token", cookie: &http.Cookie{Name: AccessTokenCookie, Value: "cookie_token"}, want: "header_token"},
		{name: "LowercaseScheme", header: "bearer  spaced_token ", want: "spaced_token"},
		{name: "CookieFallback", cookie: &http.Cookie{Name: AccessTokenCookie, Value: "cookie_token"}, want: "cookie_token"},
		{name: "BasicSchemeFallsBackToCookie", header: "Basic user:pass", cookie: &http.Cookie{Name: AccessTokenCookie, Value: "cookie_token"}, want: "cookie_token"},
		{name: "BasicSchemeOnly", header: "Basic user:pass", want: ""},
		{name: "Nothing", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			assert.Equal(t, tc.want, ExtractAccessToken(req))
		})
	}
}
