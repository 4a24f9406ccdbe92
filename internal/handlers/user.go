// internal/handlers/user.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/auth"
)

// EnsureGuest returns the player id carried by the auth_token cookie. When the
// cookie is missing or no longer verifies, a fresh guest id is minted and the
// cookie is set on w, so it must run before the response is written.
func EnsureGuest(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if token := extractCookieToken(r.Header.Get("Cookie"), auth.CookieName); token != "" {
		sub, err := auth.AuthenticateJWT(token)
		if err == nil {
			if id, perr := uuid.Parse(sub); perr == nil {
				return id, nil
			}
		}
	}

	id := uuid.New()
	token, err := auth.CreateJWT(id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest JWT: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
