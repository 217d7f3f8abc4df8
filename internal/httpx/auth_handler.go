package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markov84/MarkLight-Ltd/internal/auth"
)

type AuthHandler struct {
	Users     *auth.Repo
	Reset     *auth.PasswordReset
	JWTSecret []byte
	// Secure marks the auth cookie; set in production deployments.
	Secure bool
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/reset-password", h.resetPassword)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Register(ctx, in)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeMsg(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrUsernameTaken):
		writeMsg(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeMsg(w, http.StatusInternalServerError, "server error during registration")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"msg":  "user registered successfully",
		"user": u,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Login(ctx, in.Username, in.Email, in.Password)
	if errors.Is(err, auth.ErrInvalidInput) {
		writeMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeMsg(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.NewToken(h.JWTSecret, u)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "server error during login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"msg": "logged out"})
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeMsg(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := h.Reset.Start(ctx, in.Email)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeMsg(w, http.StatusNotFound, "no user with this email")
		return
	}
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "password reset email sent"})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" || in.Password == "" {
		writeMsg(w, http.StatusBadRequest, "token and new password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Reset.Complete(ctx, in.Token, in.Password)
	switch {
	case errors.Is(err, auth.ErrResetTokenInvalid):
		writeMsg(w, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, auth.ErrInvalidInput):
		writeMsg(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeMsg(w, http.StatusInternalServerError, "server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"msg": "password has been reset successfully"})
	}
}
