package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/auth"
	"github.com/snapfile/snapfile/pkg/metrics"
)

// AuthHandler serves the login, logout, refresh and verify endpoints.
type AuthHandler struct {
	tokens       *auth.Service
	username     string
	passwordHash string
	metrics      *metrics.HTTPMetrics
}

// NewAuthHandler creates an AuthHandler for the single admin account.
func NewAuthHandler(tokens *auth.Service, username, passwordHash string, m *metrics.HTTPMetrics) *AuthHandler {
	return &AuthHandler{
		tokens:       tokens,
		username:     username,
		passwordHash: passwordHash,
		metrics:      m,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login checks the admin credentials and issues a token pair.
//
// Both the username comparison and the bcrypt check always run, so the
// response time does not reveal which part of the credentials was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password))

	if !usernameOK || passwordErr != nil {
		h.metrics.RecordAuthFailure()
		logger.WarnCtx(r.Context(), "login failed")
		Unauthorized(w, "invalid credentials")
		return
	}

	pair, err := h.tokens.GenerateTokenPair(h.username)
	if err != nil {
		logger.ErrorCtx(r.Context(), "failed to issue token pair", logger.Err(err))
		InternalServerError(w)
		return
	}

	logger.InfoCtx(r.Context(), "login succeeded", logger.Username(h.username))
	WriteJSONOK(w, pair)
}

// Logout revokes the presented tokens.
//
// The response is 200 no matter what was presented. A valid token, an
// expired token, garbage, or an empty body all look identical from the
// outside, so logout cannot be used as a token validity oracle.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	// Decode errors are swallowed: logout never fails.
	_ = decodeBodyQuietly(r, &req)

	if token, ok := bearerToken(r); ok {
		h.tokens.Revoke(token)
	}
	if req.AccessToken != "" {
		h.tokens.Revoke(req.AccessToken)
	}
	if req.RefreshToken != "" {
		h.tokens.Revoke(req.RefreshToken)
	}

	h.metrics.SetRevokedTokens(h.tokens.RevokedCount())
	WriteJSONOK(w, map[string]string{"status": "ok"})
}

// Refresh exchanges a valid refresh token for a new pair. The old
// refresh token is revoked as part of the rotation.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	pair, err := h.tokens.Rotate(req.RefreshToken)
	if err != nil {
		h.metrics.RecordAuthFailure()
		logger.WarnCtx(r.Context(), "token refresh rejected")
		Unauthorized(w, "invalid refresh token")
		return
	}

	h.metrics.SetRevokedTokens(h.tokens.RevokedCount())
	WriteJSONOK(w, pair)
}

// Verify reports whether the presented access token is currently valid.
//
// The status is always 200; validity is carried only in the body, so the
// endpoint leaks nothing beyond the boolean the caller asked for.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	valid := false
	if token, ok := bearerToken(r); ok {
		_, err := h.tokens.ValidateAccessToken(token)
		valid = err == nil
	}

	WriteJSONOK(w, map[string]bool{"valid": valid})
}

// bearerToken extracts the token from a Bearer Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
