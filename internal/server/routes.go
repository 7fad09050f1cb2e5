// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/mainda/accounts/internal/handlers"
	appmw "codeberg.org/mainda/accounts/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRoutes(e *echo.Echo, h *handlers.Handlers, verifier appmw.TokenVerifier) {
	parentOnly := []echo.MiddlewareFunc{appmw.Authenticate(verifier), appmw.RequireParent}
	childOnly := []echo.MiddlewareFunc{appmw.Authenticate(verifier), appmw.RequireChild}

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/parent-register", h.ParentRegister)
	auth.POST("/parent-login", h.ParentLogin)
	auth.POST("/refresh-token", h.RefreshToken)
	auth.POST("/logout", h.Logout)

	parent := api.Group("/parent")
	parent.POST("/forgot-password", h.ForgotPassword)
	parent.PUT("/reset-password", h.ResetPassword)
	parent.POST("/verify-email", h.VerifyEmail)
	parent.POST("/resend-verification-email", h.ResendVerificationEmail)
	parent.GET("/profile", h.ParentProfile, parentOnly...)
	parent.PUT("/update-email", h.UpdateEmail, parentOnly...)
	parent.PUT("/update-password", h.UpdatePassword, parentOnly...)
	parent.PUT("/complete-registration", h.CompleteRegistration, parentOnly...)
	parent.DELETE("/remove-account", h.RemoveAccount, parentOnly...)
	parent.POST("/children", h.RegisterChild, parentOnly...)
	parent.GET("/children", h.ListChildren, parentOnly...)
	parent.GET("/children/:childId", h.GetChild, parentOnly...)
	parent.PUT("/children/:childId", h.UpdateChild, parentOnly...)

	child := api.Group("/child")
	child.POST("/login", h.ChildLogin)
	child.POST("/forgot-password", h.ChildForgotPassword)
	child.GET("/profile", h.ChildProfile, childOnly...)
	child.PUT("/profile-picture", h.ChangeProfilePicture, childOnly...)
}
