package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dentalce/internal/model"
	"dentalce/internal/repository"
	"dentalce/internal/service"
)

// CertificateHandler exposes the admin side of the certificate workflow.
type CertificateHandler struct {
	svc service.CertificateService
}

// NewCertificateHandler creates a new certificate handler.
func NewCertificateHandler(svc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{svc: svc}
}

// ApproveRequest optionally pins the issue date (RFC 3339 or YYYY-MM-DD).
type ApproveRequest struct {
	IssuedAt string `json:"issued_at"`
}

// ListCertificates godoc
// @Summary List certificates
// @Tags admin-certificates
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or approved"
// @Param user_id query int false "User ID"
// @Param course_id query int false "Course ID"
// @Success 200 {array} model.CertificateView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /admin/certificates [get]
func (h *CertificateHandler) ListCertificates(c echo.Context) error {
	userID, err := queryID(c, "user_id")
	if err != nil {
		return err
	}
	courseID, err := queryID(c, "course_id")
	if err != nil {
		return err
	}
	certs, err := h.svc.List(c.Request().Context(), repository.CertificateFilter{
		Status:   model.CertificateStatus(c.QueryParam("status")),
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, certs)
}

// LookupCertificate godoc
// @Summary Certificate for a user and course
// @Description Returns the certificate, creating a pending one when none exists yet.
// @Tags admin-certificates
// @Produce json
// @Security BearerAuth
// @Param user_id query int true "User ID"
// @Param course_id query int true "Course ID"
// @Success 200 {object} model.CertificateView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/certificates/lookup [get]
func (h *CertificateHandler) LookupCertificate(c echo.Context) error {
	userID, err := queryID(c, "user_id")
	if err != nil {
		return err
	}
	courseID, err := queryID(c, "course_id")
	if err != nil {
		return err
	}
	if userID == 0 || courseID == 0 {
		return fail(errInvalidInput("user_id and course_id are required"))
	}
	view, err := h.svc.Get(c.Request().Context(), userID, courseID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, view)
}

// ApproveCertificate godoc
// @Summary Approve certificate
// @Description The issue date is the given one, else the previously stored one, else now.
// @Tags admin-certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param request body ApproveRequest false "Optional issue date"
// @Success 200 {object} model.CertificateView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/certificates/{id}/approve [post]
func (h *CertificateHandler) ApproveCertificate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ApproveRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	view, err := h.svc.Approve(c.Request().Context(), id, req.IssuedAt)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, view)
}

// RevertCertificate godoc
// @Summary Revert certificate to pending
// @Tags admin-certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} model.CertificateView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/certificates/{id}/revert [post]
func (h *CertificateHandler) RevertCertificate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.svc.Revert(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, view)
}

// DeleteCertificate godoc
// @Summary Delete certificate
// @Tags admin-certificates
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/certificates/{id} [delete]
func (h *CertificateHandler) DeleteCertificate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
