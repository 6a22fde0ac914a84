package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/booking"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/httputil"
	"github.com/medibook/booking-api/pkg/metrics"
)

// Handler serves the authenticated booking API: the caller identity comes
// from the JWT and ownership checks apply.
type Handler struct {
	service *booking.Service
	metrics *metrics.Metrics
}

func NewHandler(service *booking.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) ListHospitals(c *gin.Context) {
	skip, limit := httputil.Pagination(c)
	hospitals, count, err := h.service.ListHospitals(c.Request.Context(), skip, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, hospitals, count)
}

func (h *Handler) ListHospitalDoctors(c *gin.Context) {
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

func (h *Handler) ListDoctorTimeSlots(c *gin.Context) {
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

// ValidateUser checks patient details without touching any state, so the
// frontend can fail fast before the booking form is submitted.
func (h *Handler) ValidateUser(c *gin.Context) {
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

func (h *Handler) CreateAppointment(c *gin.Context) {
	requester, ok := middleware.RequesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	appointment, err := h.service.CreateAppointment(c.Request.Context(), &req, requester.UserID)
	if err != nil {
		h.countConflict(err)
		httputil.RespondWithError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.BookingsCreated.Inc()
	}
	c.JSON(http.StatusOK, appointment)
}

// ListAppointments returns the caller's appointments; superusers see all.
func (h *Handler) ListAppointments(c *gin.Context) {
	requester, ok := middleware.RequesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}

	skip, limit := httputil.Pagination(c)
	userID := &requester.UserID
	if requester.Superuser {
		userID = nil
	}

	appointments, count, err := h.service.List(c.Request.Context(), userID, skip, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, appointments, count)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	requester, ok := middleware.RequesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}

	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), id, requester)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	requester, ok := middleware.RequesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}

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

	appointment, err := h.service.UpdateAppointment(c.Request.Context(), id, &patch, requester)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if h.metrics != nil && patch.Status != nil && *patch.Status == model.AppointmentStatusCancelled {
		h.metrics.BookingsCancelled.Inc()
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	requester, ok := middleware.RequesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}

	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), id, requester); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Appointment deleted successfully")
}

func (h *Handler) countConflict(err error) {
	if h.metrics == nil {
		return
	}
	if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.ErrConflict {
		h.metrics.BookingConflicts.Inc()
	}
}
