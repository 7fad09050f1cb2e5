// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"
	"net/http"

	authsvc "codeberg.org/mainda/accounts/internal/services/auth"
	"github.com/labstack/echo/v4"
)

type emailRequest struct {
	Email string `json:"email" validate:"required,email" msg:"Invalid email address"`
}

// ForgotPassword mails a password reset link to the parent.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message(
		fmt.Sprintf("You will receive a link to reset your password in this email: %s", req.Email)))
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required" msg:"Reset token is required"`
	NewPassword string `json:"newPassword" validate:"min=6,bcryptmax" msg:"New password must be at least 6 characters long"`
}

// ResetPassword sets a new password using a reset token.
func (h *Handlers) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("Password reset successfully"))
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required" msg:"Verification token is required"`
}

// VerifyEmail marks the parent's email as verified.
func (h *Handlers) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("Email verified successfully"))
}

// ResendVerificationEmail mails a fresh verification link.
func (h *Handlers) ResendVerificationEmail(c echo.Context) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResendVerificationEmail(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("Verification email resent successfully"))
}

// ParentProfile returns the authenticated parent.
func (h *Handlers) ParentProfile(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	parent, err := h.auth.GetParentProfile(c.Request().Context(), who.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"parent": parent})
}

type updateEmailRequest struct {
	NewEmail string `json:"newEmail" validate:"required,email" msg:"Invalid email address"`
}

// UpdateEmail changes the parent's email and requires it to be verified again.
func (h *Handlers) UpdateEmail(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	var req updateEmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	parent, err := h.auth.UpdateEmail(c.Request().Context(), who.ID, req.NewEmail)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Email updated successfully. Please verify your new email.",
		"parent":  parent,
	})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"min=6,bcryptmax" msg:"Old password must be at least 6 characters long"`
	NewPassword string `json:"newPassword" validate:"min=6,bcryptmax" msg:"New password must be at least 6 characters long"`
}

// UpdatePassword changes the parent's password.
func (h *Handlers) UpdatePassword(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.UpdatePassword(c.Request().Context(), who.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("Password updated successfully"))
}

type completeRegistrationRequest struct {
	BirthDate     *string `json:"birthDate" validate:"omitempty,birthdate" msg:"Invalid date format"`
	PhoneNumber   *string `json:"phoneNumber" validate:"omitempty,min=10" msg:"Phone number must be at least 10 digits"`
	AddressPostal *string `json:"addressPostal" validate:"omitempty,min=5" msg:"Postal address is too short"`
}

// CompleteRegistration stores the parent's optional profile fields.
func (h *Handlers) CompleteRegistration(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	var req completeRegistrationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	params := authsvc.ProfileParams{
		PhoneNumber:   req.PhoneNumber,
		AddressPostal: req.AddressPostal,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, err := birthDate(*req.BirthDate)
		if err != nil {
			return err
		}
		params.BirthDate = &d
	}

	parent, err := h.auth.CompleteRegistration(c.Request().Context(), who.ID, params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Registration completed successfully",
		"parent":  parent,
	})
}

type removeAccountRequest struct {
	Password string `json:"password" validate:"min=6,bcryptmax" msg:"Password must be at least 6 characters long"`
}

// RemoveAccount deactivates the parent after confirming the password.
func (h *Handlers) RemoveAccount(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	var req removeAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), who.ID, req.Password); err != nil {
		return err
	}

	h.clearTokenCookies(c)
	return c.JSON(http.StatusOK, message("Account deactivated successfully"))
}

type registerChildRequest struct {
	FirstName   string `json:"firstName" validate:"required" msg:"First name is required"`
	LastName    string `json:"lastName" validate:"required" msg:"Last name is required"`
	Password    string `json:"password" validate:"min=6,bcryptmax" msg:"Password must be at least 6 characters long"`
	BirthDate   string `json:"birthDate" validate:"birthdate" msg:"Invalid date format"`
	Gender      string `json:"gender" validate:"required" msg:"Gender is required"`
	SchoolLevel string `json:"schoolLevel" validate:"required" msg:"School level is required"`
}

// RegisterChild creates a child owned by the authenticated parent.
func (h *Handlers) RegisterChild(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	var req registerChildRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	birth, err := birthDate(req.BirthDate)
	if err != nil {
		return err
	}

	child, err := h.auth.RegisterChild(c.Request().Context(), who.ID, authsvc.RegisterChildParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		BirthDate:   birth,
		Gender:      req.Gender,
		SchoolLevel: req.SchoolLevel,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Child registered successfully",
		"child":   child,
	})
}

// ListChildren returns the authenticated parent's children.
func (h *Handlers) ListChildren(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}

	children, err := h.auth.ListChildren(c.Request().Context(), who.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"children": children})
}

// GetChild returns one of the authenticated parent's children.
func (h *Handlers) GetChild(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}
	childID, err := childIDParam(c)
	if err != nil {
		return err
	}

	child, err := h.auth.GetChild(c.Request().Context(), who, childID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"child": child})
}

type updateChildRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1" msg:"First name cannot be empty"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1" msg:"Last name cannot be empty"`
	Password    *string `json:"password" validate:"omitempty,min=6,bcryptmax" msg:"Password must be at least 6 characters long"`
	BirthDate   *string `json:"birthDate" validate:"omitempty,birthdate" msg:"Invalid date format"`
	Gender      *string `json:"gender" validate:"omitempty,min=1" msg:"Gender cannot be empty"`
	SchoolLevel *string `json:"schoolLevel" validate:"omitempty,min=1" msg:"School level cannot be empty"`
	Status      *bool   `json:"status"`
}

// UpdateChild changes one of the authenticated parent's children.
func (h *Handlers) UpdateChild(c echo.Context) error {
	who, err := currentParent(c)
	if err != nil {
		return err
	}
	childID, err := childIDParam(c)
	if err != nil {
		return err
	}

	var req updateChildRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	patch := authsvc.ChildPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		SchoolLevel: req.SchoolLevel,
		Status:      req.Status,
		Password:    req.Password,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		birth, err := birthDate(*req.BirthDate)
		if err != nil {
			return err
		}
		patch.BirthDate = &birth
	}

	child, err := h.auth.UpdateChild(c.Request().Context(), who, childID, patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Child updated successfully",
		"child":   child,
	})
}
