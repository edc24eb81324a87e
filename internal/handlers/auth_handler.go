package handlers

import (
	"log/slog"
	"net/http"

	"sommy-store/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth service.AuthService
	log  *slog.Logger
}

func NewAuthHandler(auth service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := h.auth.Register(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recover handles POST /auth/recover. Mail delivery is not wired up, so the
// reset link comes back in the response.
func (h *AuthHandler) Recover(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	link, err := h.auth.Recover(c.Request.Context(), req.Identifier)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset link generated", "resetLink": link})
}

// ResetPassword handles POST /auth/reset.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// AdminLogin handles POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := h.auth.AdminLogin(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"email": result.User.Email,
		"role":  "admin",
		"user":  result.User,
	})
}

// AdminRegister handles POST /auth/admin/register.
func (h *AuthHandler) AdminRegister(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := h.auth.AdminRegister(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"email": result.User.Email,
		"role":  "admin",
		"user":  result.User,
	})
}
