package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/myaicommunity/agenthub/auth"
	"github.com/myaicommunity/agenthub/database"
	"github.com/myaicommunity/agenthub/errs"
	"github.com/myaicommunity/agenthub/models"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	issuer    auth.TokenIssuer
	userRepo  *database.UserRepo
}

func newAuthHandler(issuer auth.TokenIssuer, userRepo *database.UserRepo) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		issuer:    issuer,
		userRepo:  userRepo,
	}
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// register creates a new account and returns it with a fresh token.
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("request body"))
			return
		}

		var fieldErrors []string
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			fieldErrors = append(fieldErrors, "email must be a valid email address")
		}
		if len(req.Password) < 6 {
			fieldErrors = append(fieldErrors, "password must be at least 6 characters")
		}
		if req.Password != req.ConfirmPassword {
			fieldErrors = append(fieldErrors, "passwords do not match")
		}
		if len(fieldErrors) > 0 {
			h.responder.WriteError(w, errs.NewValidationError(fieldErrors...))
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}

		user := models.User{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			Name:         req.Name,
		}

		if err := h.userRepo.Add(&user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}

		token, err := h.issuer.Generate(user.ID, user.Email)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, "User registered successfully", authResponse{
			User:  &user,
			Token: token,
		})
	}
}

// login exchanges credentials for a token.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("request body"))
			return
		}

		user, err := h.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				h.responder.WriteError(w, errs.NewUnauthorizedError("Invalid credentials"))
				return
			}
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			h.responder.WriteError(w, errs.NewUnauthorizedError("Invalid credentials"))
			return
		}

		now := time.Now()
		if err := h.userRepo.TouchLastLogin(user.ID, now); err != nil {
			// Login still succeeds; the stamp is informational.
			h.logger.Warn().Err(err).Msg("failed to update last login")
		}
		user.LastLogin = &now

		token, err := h.issuer.Generate(user.ID, user.Email)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, "Login successful", authResponse{
			User:  user,
			Token: token,
		})
	}
}

// me returns the authenticated user.
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		h.responder.WriteData(w, http.StatusOK, "", map[string]*models.User{"user": user})
	}
}

// verifyToken validates a token presented in the request body and returns
// the user it belongs to.
func (h authHandler) verifyToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		userID, err := h.issuer.Verify(req.Token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				h.responder.WriteError(w, errs.NewExpiredTokenError())
			} else {
				h.responder.WriteError(w, errs.NewInvalidTokenError())
			}
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidTokenError())
			return
		}

		h.responder.WriteData(w, http.StatusOK, "", map[string]*models.User{"user": user})
	}
}

// logout acknowledges the client-side session teardown. Tokens are
// stateless, so there is nothing to invalidate server-side.
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteMessage(w, "Logged out successfully")
	}
}
