package v1

import (
	"net/http"

	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/utils"
)

const accessTokenCookie = "accessToken"

type AuthHandler struct {
	authUC       *usecase.AuthUsecase
	secureCookie bool
}

func NewAuthHandler(authUC *usecase.AuthUsecase, secureCookie bool) *AuthHandler {
	return &AuthHandler{authUC: authUC, secureCookie: secureCookie}
}

// setTokenCookie mirrors the bearer token for browser clients.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.authUC.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("user_id", result.User.ID).
		Msg("User registered")
	h.setTokenCookie(w, result.Token, 0)
	utils.WriteJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.authUC.Login(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("user_id", result.User.ID).
		Msg("User authenticated successfully")
	h.setTokenCookie(w, result.Token, 0)
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)
	utils.WriteMessage(w, http.StatusOK, "Logged out")
}
