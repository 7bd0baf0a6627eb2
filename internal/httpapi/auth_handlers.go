package httpapi

import (
	"errors"
	"net/http"
	"time"

	"gatekey.org/internal/audit"
	"gatekey.org/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type accessTokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type googleLoginRequest struct {
	Code string `json:"code"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	pair, err := a.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			writeError(w, r, http.StatusBadRequest, "bad credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{"username": req.Username})
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	access, err := a.svc.Refresh(r.Context(), token)
	if err != nil {
		handleTokenError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.refresh", nil)
	writeJSON(w, http.StatusOK, accessTokenResponse{
		AccessToken: access.Token,
		ExpiresAt:   access.ExpiresAt,
	})
}

func (a *API) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	a.revoke(w, r, auth.KindAccess)
}

func (a *API) handleRevokeRefresh(w http.ResponseWriter, r *http.Request) {
	a.revoke(w, r, auth.KindRefresh)
}

// revoke invalidates the presented token's own jti. Logout is the client
// calling revoke_access with the access token and revoke_refresh with the
// refresh token.
func (a *API) revoke(w http.ResponseWriter, r *http.Request, kind auth.TokenKind) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}

	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	if err := a.svc.Revoke(r.Context(), token, kind); err != nil {
		handleTokenError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.revoke", map[string]any{"kind": string(kind)})
	writeJSON(w, http.StatusOK, map[string]any{"message": "token revoked"})
}

func (a *API) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req googleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.svc.FederatedLogin(r.Context(), req.Code)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !result.Succeeded() {
		switch result.Failure.Kind {
		case auth.FailureMissingAuthorizationCode:
			writeError(w, r, http.StatusBadRequest, "missing authorization code")
		case auth.FailureProviderExchangeFailed, auth.FailureProviderProfileInvalid:
			writeError(w, r, http.StatusInternalServerError, result.Failure.Detail)
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login.google", nil)
	pair := result.Pair
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":   identity.Subject,
		"role":      string(identity.Role),
		"resources": identity.Resources,
	})
}

// handleTokenError maps validation failures to transport status codes.
func handleTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		writeError(w, r, http.StatusUnauthorized, "token revoked")
	case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrSignatureInvalid):
		writeError(w, r, http.StatusUnauthorized, "invalid token")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
