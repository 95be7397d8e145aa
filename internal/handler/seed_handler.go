package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dentalce/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	specialtyService service.SpecialtyService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(specialtyService service.SpecialtyService) *SeedHandler {
	return &SeedHandler{specialtyService: specialtyService}
}

// SeedSpecialtiesRequest overrides the default specialty list.
type SeedSpecialtiesRequest struct {
	Names []string `json:"names" validate:"omitempty,dive,max=150"`
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// SeedSpecialties godoc
// @Summary Seed specialties
// @Description Inserts the given names, or the default dental specialties when none are given. Existing names are skipped.
// @Tags seed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SeedSpecialtiesRequest false "Names to seed"
// @Success 200 {object} SeedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/seed/specialties [post]
func (h *SeedHandler) SeedSpecialties(c echo.Context) error {
	var req SeedSpecialtiesRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	names := req.Names
	if len(names) == 0 {
		names = service.DefaultSpecialties
	}

	count, err := h.specialtyService.SeedSpecialties(c.Request().Context(), names)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, SeedResponse{
		Message: "specialties seeded",
		Count:   count,
	})
}
