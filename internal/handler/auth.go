// Package handler contains the HTTP handlers of the staff API.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunqar/zhk-support-bot/internal/utils"
)

// AuthHandler issues access tokens for the staff API. There is a single
// shared staff credential: the bcrypt hash comes from configuration, so no
// password ever lives in the database.
type AuthHandler struct {
	secret       string
	passwordHash string
	ttlMin       int
}

func NewAuthHandler(secret, passwordHash string, ttlMin int) *AuthHandler {
	return &AuthHandler{secret: secret, passwordHash: passwordHash, ttlMin: ttlMin}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login verifies the staff password and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login and password required"})
	}
	if !utils.VerifyPassword(h.passwordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.secret, req.Login, "staff", h.ttlMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token signing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
	})
}
