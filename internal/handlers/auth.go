// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	authsvc "codeberg.org/mainda/accounts/internal/services/auth"
	"github.com/labstack/echo/v4"
)

type parentRegisterRequest struct {
	FirstName string `json:"firstName" validate:"required" msg:"First name is required"`
	LastName  string `json:"lastName" validate:"required" msg:"Last name is required"`
	Email     string `json:"email" validate:"required,email" msg:"Invalid email address"`
	Password  string `json:"password" validate:"min=6,bcryptmax" msg:"Password must be at least 6 characters long"`
}

// ParentRegister creates a parent account and sends the verification email.
func (h *Handlers) ParentRegister(c echo.Context) error {
	var req parentRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	parent, err := h.auth.RegisterParent(c.Request().Context(), authsvc.RegisterParentParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Parent registered successfully. Please check your email to verify your account.",
		"parent":  parent,
	})
}

type parentLoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Invalid email address"`
	Password string `json:"password" validate:"min=6,bcryptmax" msg:"Password must be at least 6 characters long"`
}

// ParentLogin issues tokens for a verified, active parent.
func (h *Handlers) ParentLogin(c echo.Context) error {
	var req parentLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	login, err := h.auth.LoginParent(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, login.Tokens)
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Login successful",
		"accessToken":  login.Tokens.AccessToken,
		"refreshToken": login.Tokens.RefreshToken,
		"parent":       login.Parent,
	})
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshToken reads the refresh token from the body, falling back to the
// cookie.
func refreshToken(c echo.Context, req refreshTokenRequest) string {
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *Handlers) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.Refresh(c.Request().Context(), refreshToken(c, req))
	if err != nil {
		return err
	}

	h.setTokenCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Token refreshed successfully",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout clears the token cookies. It never fails.
func (h *Handlers) Logout(c echo.Context) error {
	var req refreshTokenRequest
	_ = c.Bind(&req)

	h.auth.Logout(c.Request().Context(), refreshToken(c, req))
	h.clearTokenCookies(c)
	return c.JSON(http.StatusOK, message("Logged out successfully"))
}
