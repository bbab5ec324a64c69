package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"asthma-care-server/internal/config"
	"asthma-care-server/internal/middleware"
	"asthma-care-server/internal/session"
	"asthma-care-server/internal/utils"
)

// AuthHandler guards the staff pages with the clinic's shared password.
type AuthHandler struct {
	Cfg          *config.Config
	Sessions     *session.Registry
	Logger       *zap.Logger
	passwordHash []byte
}

// NewAuthHandler creates a new AuthHandler. The shared password is hashed
// once so it is never compared in plain text.
func NewAuthHandler(cfg *config.Config, sessions *session.Registry, logger *zap.Logger) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.StaffPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash staff password: %w", err)
	}
	return &AuthHandler{Cfg: cfg, Sessions: sessions, Logger: logger, passwordHash: hash}, nil
}

// LoginRequest represents the request body for staff login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	Session     session.Session `json:"session"`
}

// Login checks the shared password and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)) != nil {
		h.Logger.Warn("Staff login rejected", zap.String("client_ip", c.ClientIP()))
		utils.Unauthorized(c, "รหัสผ่านไม่ถูกต้อง")
		return
	}

	s, err := h.Sessions.Start(c.Request.Context())
	if err != nil {
		h.Logger.Error("Failed to start session", zap.Error(err))
		utils.InternalServerError(c, "Failed to start session")
		return
	}
	token, err := utils.GenerateSessionToken(s, h.Cfg.SessionSecret)
	if err != nil {
		_ = h.Sessions.End(c.Request.Context(), s.ID)
		utils.InternalServerError(c, "Failed to issue session: "+err.Error())
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookie,
		token,
		int(time.Until(s.ExpiresAt).Seconds()),
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	h.Logger.Info("Staff session started", zap.String("session_id", s.ID))
	utils.Success(c, "Login successful", LoginResponse{AccessToken: token, Session: s})
}

// Logout ends the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Login required")
		return
	}
	if err := h.Sessions.End(c.Request.Context(), s.ID); err != nil {
		h.Logger.Error("Failed to end session", zap.String("session_id", s.ID), zap.Error(err))
		utils.InternalServerError(c, "Failed to end session")
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.Cfg.Environment != "development", true)

	h.Logger.Info("Staff session ended", zap.String("session_id", s.ID))
	utils.Success(c, "Logged out successfully", nil)
}

// GetSession returns the current session.
func (h *AuthHandler) GetSession(c *gin.Context) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Login required")
		return
	}
	utils.Success(c, "Session retrieved", s)
}
