package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dentalce/internal/service"
)

// SpecialtyHandler handles the specialty lookup table.
type SpecialtyHandler struct {
	svc service.SpecialtyService
}

// NewSpecialtyHandler creates a new specialty handler.
func NewSpecialtyHandler(svc service.SpecialtyService) *SpecialtyHandler {
	return &SpecialtyHandler{svc: svc}
}

// SpecialtyRequest names a specialty.
type SpecialtyRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

// ListSpecialties godoc
// @Summary List specialties
// @Tags catalog
// @Produce json
// @Success 200 {array} model.Specialty
// @Router /catalog/specialties [get]
func (h *SpecialtyHandler) ListSpecialties(c echo.Context) error {
	specialties, err := h.svc.ListSpecialties(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, specialties)
}

// CreateSpecialty godoc
// @Summary Create specialty
// @Tags admin-specialties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SpecialtyRequest true "Specialty"
// @Success 201 {object} model.Specialty
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/specialties [post]
func (h *SpecialtyHandler) CreateSpecialty(c echo.Context) error {
	var req SpecialtyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	specialty, err := h.svc.CreateSpecialty(c.Request().Context(), req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, specialty)
}

// DeleteSpecialty godoc
// @Summary Delete specialty
// @Description Courses that referenced it keep existing without a specialty.
// @Tags admin-specialties
// @Security BearerAuth
// @Param id path int true "Specialty ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/specialties/{id} [delete]
func (h *SpecialtyHandler) DeleteSpecialty(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSpecialty(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
