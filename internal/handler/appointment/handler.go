package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/handler"
	"github.com/medibook/medibook-api/internal/middleware"
	"github.com/medibook/medibook-api/internal/model"
	appointmentService "github.com/medibook/medibook-api/internal/service/appointment"
	bookingService "github.com/medibook/medibook-api/internal/service/booking"
	"github.com/medibook/medibook-api/pkg/validator"
)

type Handler struct {
	appointments *appointmentService.Service
	bookings     *bookingService.Service
	validate     *validator.Validator
}

func NewHandler(appointments *appointmentService.Service, bookings *bookingService.Service, validate *validator.Validator) *Handler {
	return &Handler{
		appointments: appointments,
		bookings:     bookings,
		validate:     validate,
	}
}

// Book creates an appointment from the selected slot and reason. The auth
// middleware guarantees a patient identity before this runs.
func (h *Handler) Book(c *gin.Context) {
	patientID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.bookings.Book(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

// List returns the patient's appointments partitioned upcoming/past.
func (h *Handler) List(c *gin.Context) {
	patientID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	list, err := h.appointments.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Cancel(c *gin.Context) {
	patientID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	aptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.appointments.Cancel(c.Request.Context(), patientID, aptID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

// Dashboard returns the authenticated doctor's schedule.
func (h *Handler) Dashboard(c *gin.Context) {
	doctorID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	schedule, err := h.appointments.DoctorSchedule(c.Request.Context(), doctorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedule))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments", auth.Authenticate())
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.POST("/:id/cancel", h.Cancel)
	}

	r.GET("/doctor/dashboard", auth.Authenticate(), auth.RequireDoctor(), h.Dashboard)
}
