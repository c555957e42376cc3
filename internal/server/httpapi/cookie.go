package httpapi

import (
	"net/http"
	"time"
)

// RefreshTokenCookieName is the cookie carrying the opaque refresh token.
const RefreshTokenCookieName = "refreshToken"

// cookiePath limits the refresh token to the authentication endpoints; no
// other route ever sees the cookie.
const cookiePath = "/api/authentication"

func setRefreshTokenCookie(w http.ResponseWriter, r *http.Request, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    value,
		Path:     cookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func refreshTokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
