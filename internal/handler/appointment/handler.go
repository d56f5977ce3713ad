package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/idib19/glamstore-sub001/internal/handler"
	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/scheduling"
	"github.com/idib19/glamstore-sub001/internal/service/booking"
)

type Handler struct {
	service  *booking.Service
	calendar *scheduling.Calendar
}

func NewHandler(service *booking.Service, calendar *scheduling.Calendar) *Handler {
	return &Handler{service: service, calendar: calendar}
}

// RegisterRoutes registers the public booking endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
}

// RegisterAdminRoutes registers the owner-facing appointment management
// endpoints; the group is expected to carry the auth middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := h.calendar.ParseDate(dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date must be formatted YYYY-MM-DD"))
			return
		}
		filters.Date = &date
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := model.AppointmentStatus(statusStr)
		filters.Status = &status
	}

	appointments, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}
