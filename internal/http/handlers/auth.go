package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idrissbado/taskhub/internal/config"
	"github.com/idrissbado/taskhub/internal/domain/user"
	"github.com/idrissbado/taskhub/internal/http/middlewares"
	"github.com/idrissbado/taskhub/internal/repo/postgres"
	"github.com/idrissbado/taskhub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

type SessionIssuer interface {
	GenerateSessionToken(userID string) (raw string, expiresAt time.Time, err error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        SessionIssuer
	cfg        config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt SessionIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
		cfg:        cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.Name)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "User already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	if !h.issueSession(ctx, u.ID) {
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// same answer for unknown email and wrong password
		RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Invalid credentials", nil)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Invalid credentials", nil)
		return
	}

	if !h.issueSession(ctx, foundUser.ID) {
		return
	}

	ctx.JSON(http.StatusOK, foundUser)
}

// Logout clears the cookie unconditionally. There is no server-side
// revocation list, so an already-issued token stays valid until expiry.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// helpers

func (h *AuthHandler) issueSession(ctx *gin.Context, userID string) bool {
	raw, expiresAt, err := h.jwt.GenerateSessionToken(userID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return false
	}

	h.setSessionCookie(ctx, raw, expiresAt)
	return true
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		raw,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
