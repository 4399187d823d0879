package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medibook/medibook-api/internal/handler"
	"github.com/medibook/medibook-api/internal/model"
	doctorService "github.com/medibook/medibook-api/internal/service/doctor"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
)

type Handler struct {
	service *doctorService.Service
}

func NewHandler(service *doctorService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(
		c.Request.Context(),
		c.Query("specialization"),
		c.Query("name"),
	)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	ref, err := model.ParseDoctorRef(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), ref)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) GetTimeSlots(c *gin.Context) {
	ref, err := model.ParseDoctorRef(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	date := c.Query("date")
	if date == "" {
		handler.RespondError(c, apperrors.BadRequest("date query parameter is required", nil))
		return
	}

	slots, err := h.service.GetTimeSlots(c.Request.Context(), ref, date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/:id/slots", h.GetTimeSlots)
	}
}
