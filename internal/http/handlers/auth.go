package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"

	"studio/internal/middleware"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminLogin trades the shared admin password for a signed bearer token.
func (a *App) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		a.error(w, http.StatusBadRequest, "password required")
		return
	}
	if !passwordMatches(a.Config.AdminPassword, req.Password) {
		a.Logger.Warn().Str("ip", middleware.ClientIP(r)).Msg("admin login rejected")
		a.error(w, http.StatusUnauthorized, "invalid password")
		return
	}
	token, exp, err := middleware.IssueAdminToken(a.Config.AdminTokenSecret, a.now())
	if err != nil {
		a.fail(w, r, err, "failed to issue token")
		return
	}
	a.json(w, http.StatusOK, adminLoginResponse{Token: token, ExpiresAt: exp})
}

// passwordMatches hashes both sides so the comparison length never depends
// on the guess.
func passwordMatches(want, got string) bool {
	if want == "" {
		return false
	}
	w, g := sha256.Sum256([]byte(want)), sha256.Sum256([]byte(got))
	return subtle.ConstantTimeCompare(w[:], g[:]) == 1
}
