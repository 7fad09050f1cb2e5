// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type childLoginRequest struct {
	Username string `json:"username" validate:"required" msg:"Username is required"`
	Password string `json:"password" validate:"min=6,bcryptmax" msg:"Password must be at least 6 characters long"`
}

// ChildLogin issues tokens for an active child.
func (h *Handlers) ChildLogin(c echo.Context) error {
	var req childLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	login, err := h.auth.LoginChild(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, login.Tokens)
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Login successful",
		"accessToken":  login.Tokens.AccessToken,
		"refreshToken": login.Tokens.RefreshToken,
		"child":        login.Child,
	})
}

type childForgotPasswordRequest struct {
	Username string `json:"username" validate:"required" msg:"Username is required"`
}

// ChildForgotPassword asks the child's parent to set a new password.
func (h *Handlers) ChildForgotPassword(c echo.Context) error {
	var req childForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ForgotChildPassword(c.Request().Context(), req.Username); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("Password reset email sent to parent"))
}

// ChildProfile returns the authenticated child.
func (h *Handlers) ChildProfile(c echo.Context) error {
	who, err := currentChild(c)
	if err != nil {
		return err
	}

	child, err := h.auth.GetChildProfile(c.Request().Context(), who)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"child": child})
}

type profilePictureRequest struct {
	ProfilePictureURL string `json:"profilePictureUrl" validate:"required,url" msg:"Invalid URL format for profile picture"`
}

// ChangeProfilePicture sets the authenticated child's picture URL.
func (h *Handlers) ChangeProfilePicture(c echo.Context) error {
	who, err := currentChild(c)
	if err != nil {
		return err
	}

	var req profilePictureRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	child, err := h.auth.ChangeProfilePicture(c.Request().Context(), who, req.ProfilePictureURL)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"child": child})
}
