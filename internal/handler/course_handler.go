package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"dentalce/internal/repository"
	"dentalce/internal/service"
)

// CourseHandler serves the public catalog and the admin course and
// classroom endpoints.
type CourseHandler struct {
	courseService    service.CourseService
	classroomService service.ClassroomService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courseService service.CourseService, classroomService service.ClassroomService) *CourseHandler {
	return &CourseHandler{courseService: courseService, classroomService: classroomService}
}

// CourseRequest is the writable part of a course.
type CourseRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Author        string `json:"author" validate:"max=255"`
	Description   string `json:"description"`
	Objectives    string `json:"objectives"`
	Audience      string `json:"audience" validate:"max=255"`
	Category      string `json:"category" validate:"max=100"`
	SpecialtyID   *uint  `json:"specialty_id"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

func (r CourseRequest) input() service.CourseInput {
	return service.CourseInput{
		Title:         r.Title,
		Author:        r.Author,
		Description:   r.Description,
		Objectives:    r.Objectives,
		Audience:      r.Audience,
		Category:      r.Category,
		SpecialtyID:   r.SpecialtyID,
		CoverImageURL: r.CoverImageURL,
	}
}

// ClassroomRequest is the writable part of a classroom. Dates are RFC 3339.
type ClassroomRequest struct {
	Title             string          `json:"title" validate:"required,max=255"`
	Speaker           string          `json:"speaker" validate:"max=255"`
	VideoURL          string          `json:"video_url"`
	Description       string          `json:"description"`
	Objectives        string          `json:"objectives"`
	PublishedDate     time.Time       `json:"published_date"`
	ExpirationDate    *time.Time      `json:"expiration_date"`
	DiscussionEnabled bool            `json:"discussion_enabled"`
	AssessmentLinks   []string        `json:"assessment_links" validate:"max=3"`
	CECredits         decimal.Decimal `json:"ce_credits" swaggertype:"string"`
}

func (r ClassroomRequest) input() service.ClassroomInput {
	return service.ClassroomInput{
		Title:             r.Title,
		Speaker:           r.Speaker,
		VideoURL:          r.VideoURL,
		Description:       r.Description,
		Objectives:        r.Objectives,
		PublishedDate:     r.PublishedDate,
		ExpirationDate:    r.ExpirationDate,
		DiscussionEnabled: r.DiscussionEnabled,
		AssessmentLinks:   r.AssessmentLinks,
		CECredits:         r.CECredits,
	}
}

// ListCourses godoc
// @Summary List catalog courses
// @Tags catalog
// @Produce json
// @Param category query string false "Category"
// @Param specialty_id query int false "Specialty ID"
// @Success 200 {array} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Router /catalog/courses [get]
func (h *CourseHandler) ListCourses(c echo.Context) error {
	specialtyID, err := queryID(c, "specialty_id")
	if err != nil {
		return err
	}
	courses, err := h.courseService.ListCourses(c.Request().Context(), repository.CourseFilter{
		Category:    c.QueryParam("category"),
		SpecialtyID: specialtyID,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, courses)
}

// GetCourse godoc
// @Summary Course detail with classrooms
// @Description Classroom status (upcoming, active, expired) is computed at request time.
// @Tags catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} service.CourseDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /catalog/courses/{id} [get]
func (h *CourseHandler) GetCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	course, err := h.courseService.GetCourse(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, course)
}

// CreateCourse godoc
// @Summary Create course
// @Tags admin-courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CourseRequest true "Course"
// @Success 201 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/courses [post]
func (h *CourseHandler) CreateCourse(c echo.Context) error {
	var req CourseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	course, err := h.courseService.CreateCourse(c.Request().Context(), req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags admin-courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body CourseRequest true "Course"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CourseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	course, err := h.courseService.UpdateCourse(c.Request().Context(), id, req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse godoc
// @Summary Delete course
// @Description Deletes the course with its classrooms and certificates.
// @Tags admin-courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.courseService.DeleteCourse(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListClassrooms godoc
// @Summary List classrooms of a course
// @Tags admin-classrooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {array} service.ClassroomView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/courses/{id}/classrooms [get]
func (h *CourseHandler) ListClassrooms(c echo.Context) error {
	courseID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	classrooms, err := h.classroomService.ListClassrooms(c.Request().Context(), courseID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, classrooms)
}

// CreateClassroom godoc
// @Summary Add a classroom to a course
// @Tags admin-classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body ClassroomRequest true "Classroom"
// @Success 201 {object} service.ClassroomView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/courses/{id}/classrooms [post]
func (h *CourseHandler) CreateClassroom(c echo.Context) error {
	courseID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ClassroomRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	classroom, err := h.classroomService.CreateClassroom(c.Request().Context(), courseID, req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, classroom)
}

// GetClassroom godoc
// @Summary Get classroom
// @Tags admin-classrooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Classroom ID"
// @Success 200 {object} service.ClassroomView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/classrooms/{id} [get]
func (h *CourseHandler) GetClassroom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	classroom, err := h.classroomService.GetClassroom(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, classroom)
}

// UpdateClassroom godoc
// @Summary Update classroom
// @Tags admin-classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Classroom ID"
// @Param request body ClassroomRequest true "Classroom"
// @Success 200 {object} service.ClassroomView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/classrooms/{id} [put]
func (h *CourseHandler) UpdateClassroom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ClassroomRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	classroom, err := h.classroomService.UpdateClassroom(c.Request().Context(), id, req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, classroom)
}

// DeleteClassroom godoc
// @Summary Delete classroom
// @Tags admin-classrooms
// @Security BearerAuth
// @Param id path int true "Classroom ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/classrooms/{id} [delete]
func (h *CourseHandler) DeleteClassroom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.classroomService.DeleteClassroom(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
