package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/booking"
	"github.com/medibook/booking-api/pkg/httputil"
	"github.com/medibook/booking-api/pkg/metrics"
)

// ServiceHandler serves the standalone appointments microservice behind the
// gateway. Callers are trusted: there is no token, the owning user comes in
// the request body and no ownership checks apply.
type ServiceHandler struct {
	service *booking.Service
	metrics *metrics.Metrics
}

func NewServiceHandler(service *booking.Service, m *metrics.Metrics) *ServiceHandler {
	return &ServiceHandler{service: service, metrics: m}
}

func (h *ServiceHandler) ListHospitals(c *gin.Context) {
	skip, limit := httputil.Pagination(c)
	hospitals, count, err := h.service.ListHospitals(c.Request.Context(), skip, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, hospitals, count)
}

func (h *ServiceHandler) ListHospitalDoctors(c *gin.Context) {
	hospitalID, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Hospital not found"})
		return
	}

	skip, limit := httputil.Pagination(c)
	doctors, count, err := h.service.ListHospitalDoctors(c.Request.Context(), hospitalID, skip, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, doctors, count)
}

func (h *ServiceHandler) ListDoctorTimeSlots(c *gin.Context) {
	doctorID, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Doctor not found"})
		return
	}

	slots, err := h.service.ListDoctorTimeSlots(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *ServiceHandler) ValidateUser(c *gin.Context) {
	var req model.UserValidation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := booking.ValidateUser(&req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "User validation successful")
}

func (h *ServiceHandler) CreateAppointment(c *gin.Context) {
	var req model.ServiceCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	appointment, err := h.service.CreateAppointment(c.Request.Context(), &req.CreateAppointmentRequest, req.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.BookingsCreated.Inc()
	}
	c.JSON(http.StatusOK, appointment)
}

// ListAppointments lists everything, optionally narrowed by a user_id query
// parameter supplied by the calling service.
func (h *ServiceHandler) ListAppointments(c *gin.Context) {
	skip, limit := httputil.Pagination(c)

	var userID *uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
			return
		}
		userID = &parsed
	}

	appointments, count, err := h.service.List(c.Request.Context(), userID, skip, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, appointments, count)
}

func (h *ServiceHandler) GetAppointment(c *gin.Context) {
	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), id, model.ServiceRequester())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *ServiceHandler) UpdateAppointment(c *gin.Context) {
	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}

	var patch model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	appointment, err := h.service.UpdateAppointment(c.Request.Context(), id, &patch, model.ServiceRequester())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if h.metrics != nil && patch.Status != nil && *patch.Status == model.AppointmentStatusCancelled {
		h.metrics.BookingsCancelled.Inc()
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *ServiceHandler) DeleteAppointment(c *gin.Context) {
	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), id, model.ServiceRequester()); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Appointment deleted successfully")
}
