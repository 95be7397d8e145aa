package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dentalce/internal/auth"
	"dentalce/internal/errors"
	"dentalce/internal/middleware"
	"dentalce/internal/service"
)

// ProfileHandler serves the signed-in user's own resources.
type ProfileHandler struct {
	authService        service.AuthService
	certificateService service.CertificateService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(authService service.AuthService, certificateService service.CertificateService) *ProfileHandler {
	return &ProfileHandler{authService: authService, certificateService: certificateService}
}

// UpdateProfileRequest edits the caller's profile. Changing the password
// requires the current one.
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email           *string `json:"email" validate:"omitempty,email"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=8"`
}

func caller(c echo.Context) (*auth.SessionClaim, error) {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return nil, fail(errors.ErrUnauthorized)
	}
	return claim, nil
}

// Me godoc
// @Summary Current user profile
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	claim, err := caller(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), claim.ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update current user profile
// @Tags me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /me [put]
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	claim, err := caller(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), claim.ID, service.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// MyCertificates godoc
// @Summary List the caller's certificates
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.CertificateView
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/certificates [get]
func (h *ProfileHandler) MyCertificates(c echo.Context) error {
	claim, err := caller(c)
	if err != nil {
		return err
	}
	certs, err := h.certificateService.ListForUser(c.Request().Context(), claim.ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, certs)
}

// MyCourseCertificate godoc
// @Summary Certificate for a course
// @Description Returns the caller's certificate for the course, creating a pending one on first access.
// @Tags me
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} model.CertificateView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/courses/{id}/certificate [get]
func (h *ProfileHandler) MyCourseCertificate(c echo.Context) error {
	claim, err := caller(c)
	if err != nil {
		return err
	}
	courseID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.certificateService.Get(c.Request().Context(), claim.ID, courseID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, view)
}
