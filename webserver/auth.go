package webserver

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pivotdash/errors"
	"pivotdash/model"
	"pivotdash/utils/auth"
	fiberhelpers "pivotdash/utils/fiberhelper"
	"pivotdash/utils/fiberhelper/response"
)

func (s *Server) handleRegister(c *fiber.Ctx) error {
	req := fiberhelpers.RequestParse[model.RegisterRequest](c)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") || len(req.Password) < 8 {
		return errors.NewBadRequest(errors.ErrRequestParser)
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return err
	}
	user := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: auth.HashPassword(req.Password, salt),
		Salt:         salt,
		CreatedAt:    time.Now(),
	}
	if err := s.userStore.Create(c.Context(), user); err != nil {
		return err
	}

	token, expiresAt, err := auth.IssueUserToken(user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(model.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	req := fiberhelpers.RequestParse[model.LoginRequest](c)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userStore.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.NewUnauthorized(errors.ErrInvalidCredentials)
	}

	hashed := auth.HashPassword(req.Password, user.Salt)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(user.PasswordHash)) != 1 {
		return errors.NewUnauthorized(errors.ErrInvalidCredentials)
	}

	token, expiresAt, err := auth.IssueUserToken(user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(model.TokenResponse{Token: token, ExpiresAt: expiresAt})
}
