package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mkokor/jwt-based-access-management/internal/common"
	"github.com/mkokor/jwt-based-access-management/internal/server/models"
)

// invalidCredentialsMsg is returned for unknown usernames and wrong passwords
// alike, so responses never reveal whether an account exists.
const invalidCredentialsMsg = "invalid username or password"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (*credentialsRequest, bool) {
	req := &credentialsRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return nil, false
	}
	return req, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	s.logger.Info(r.Context(), "Registration request")

	user, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, common.ErrPasswordTooWeak):
			writeError(w, http.StatusBadRequest, "password does not satisfy the strength policy")
		default:
			s.logger.Error(r.Context(), err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, invalidCredentialsMsg)
		default:
			s.logger.Error(r.Context(), err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	setRefreshTokenCookie(w, r, pair.RefreshToken, pair.RefreshTokenExpiry)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	value, ok := refreshTokenFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh token cookie is missing")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), value)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, common.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "refresh token expired")
		case errors.Is(err, common.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
		default:
			s.logger.Error(r.Context(), err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	setRefreshTokenCookie(w, r, pair.RefreshToken, pair.RefreshTokenExpiry)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.ResolveIdentity(r.Context(), ClaimsFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotAuthenticated):
			writeError(w, http.StatusUnauthorized, "not authenticated")
		case errors.Is(err, common.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			s.logger.Error(r.Context(), err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, result)
}
