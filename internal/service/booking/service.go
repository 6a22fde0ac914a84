package booking

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-api/internal/email"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/cache"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/metrics"
)

const slotCache = "timeslots"

// Service implements the booking workflow: it enforces the creation
// preconditions and keeps Appointment and DoctorTimeSlot state consistent
// across create, update and delete.
type Service struct {
	hospitals    repository.HospitalRepository
	doctors      repository.DoctorRepository
	slots        repository.TimeSlotRepository
	appointments repository.AppointmentRepository
	cache        *cache.Cache
	mailer       email.Service
	metrics      *metrics.Metrics
}

func NewService(
	hospitals repository.HospitalRepository,
	doctors repository.DoctorRepository,
	slots repository.TimeSlotRepository,
	appointments repository.AppointmentRepository,
	readCache *cache.Cache,
	mailer email.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		hospitals:    hospitals,
		doctors:      doctors,
		slots:        slots,
		appointments: appointments,
		cache:        readCache,
		mailer:       mailer,
		metrics:      m,
	}
}

// ValidateUser checks patient details ahead of booking. Pure check, no
// persistence access. Lengths count characters, not bytes, so accented
// names are measured the way the form shows them.
func ValidateUser(info *model.UserValidation) error {
	if utf8.RuneCountInString(info.Name) < 2 {
		return apperrors.BadRequest("Name must be at least 2 characters", nil)
	}
	if utf8.RuneCountInString(info.IDNumber) < 10 {
		return apperrors.BadRequest("ID number must be at least 10 characters", nil)
	}
	if utf8.RuneCountInString(info.Phone) < 10 {
		return apperrors.BadRequest("Phone number must be at least 10 characters", nil)
	}
	return nil
}

func (s *Service) ListHospitals(ctx context.Context, skip, limit int) ([]*model.Hospital, int, error) {
	hospitals, count, err := s.hospitals.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return hospitals, count, nil
}

func (s *Service) ListHospitalDoctors(ctx context.Context, hospitalID uuid.UUID, skip, limit int) ([]*model.Doctor, int, error) {
	if _, err := s.hospitals.Get(ctx, hospitalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, apperrors.NotFound("Hospital", err)
		}
		return nil, 0, apperrors.Internal(err)
	}

	doctors, count, err := s.doctors.ListByHospital(ctx, hospitalID, skip, limit)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return doctors, count, nil
}

// ListDoctorTimeSlots returns the available slots for a doctor, served from
// the read cache when warm. The cache is invalidated whenever a booking
// operation flips any of the doctor's slots.
func (s *Service) ListDoctorTimeSlots(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorTimeSlot, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor", err)
		}
		return nil, apperrors.Internal(err)
	}

	key := slotCacheKey(doctorID)
	var cached []*model.DoctorTimeSlot
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		s.countCache(true)
		return cached, nil
	}
	s.countCache(false)

	slots, err := s.slots.ListAvailable(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.cache.SetJSON(ctx, key, slots); err != nil {
		log.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("failed to cache time slots")
	}
	return slots, nil
}

// CreateAppointment enforces the booking preconditions in order (first
// failure wins) and commits the appointment insert together with the slot
// flip in one transaction.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest, userID uuid.UUID) (*model.Appointment, error) {
	if _, err := s.hospitals.Get(ctx, req.HospitalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Hospital", err)
		}
		return nil, apperrors.Internal(err)
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor", err)
		}
		return nil, apperrors.Internal(err)
	}
	if doctor.HospitalID != req.HospitalID {
		return nil, apperrors.BadRequest("Doctor does not belong to the selected hospital", nil)
	}

	slot, err := s.slots.FindBookable(ctx, req.DoctorID, req.AppointmentTime)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("Selected time slot is not available", err)
		}
		return nil, apperrors.Internal(err)
	}

	appointment := &model.Appointment{
		PatientName:     req.PatientName,
		PatientIDNumber: req.PatientIDNumber,
		PatientPhone:    req.PatientPhone,
		PatientEmail:    req.PatientEmail,
		AppointmentTime: req.AppointmentTime,
		Status:          model.AppointmentStatusPending,
		UserID:          userID,
		HospitalID:      req.HospitalID,
		DoctorID:        req.DoctorID,
	}

	if err := s.appointments.Book(ctx, appointment, slot.ID); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			// Lost the race to a concurrent booking of the same slot.
			return nil, apperrors.Conflict("Selected time slot is not available", err)
		}
		return nil, apperrors.Internal(err)
	}

	s.invalidateSlots(ctx, req.DoctorID)
	s.sendConfirmation(appointment, doctor)

	return appointment, nil
}

// List returns a page of appointments plus the unpaginated count. A nil
// userID lists all appointments; handlers decide the filter from their own
// trust model.
func (s *Service) List(ctx context.Context, userID *uuid.UUID, skip, limit int) ([]*model.Appointment, int, error) {
	appointments, count, err := s.appointments.List(ctx, userID, skip, limit)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return appointments, count, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID, requester model.Requester) (*model.Appointment, error) {
	appointment, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// UpdateAppointment applies the fields present in the patch. Cancelling
// re-opens the matching time slot best-effort: a slot that no longer exists
// is tolerated silently.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, patch *model.UpdateAppointmentRequest, requester model.Requester) (*model.Appointment, error) {
	appointment, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	restoreSlot := patch.Status != nil && *patch.Status == model.AppointmentStatusCancelled
	if patch.Status != nil {
		appointment.Status = *patch.Status
	}

	if err := s.appointments.Update(ctx, appointment, restoreSlot); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	if restoreSlot {
		s.invalidateSlots(ctx, appointment.DoctorID)
	}
	return appointment, nil
}

// DeleteAppointment always attempts to re-open the appointment's slot before
// removing the row; both happen in one transaction.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID, requester model.Requester) error {
	appointment, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := s.appointments.Delete(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Appointment", err)
		}
		return apperrors.Internal(err)
	}

	s.invalidateSlots(ctx, appointment.DoctorID)
	return nil
}

// getOwned fetches the appointment and applies the capability check. A
// missing appointment is 404; an existing one the requester may not touch is
// reported as a permission failure, not as absent.
func (s *Service) getOwned(ctx context.Context, id uuid.UUID, requester model.Requester) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Appointment", err)
		}
		return nil, apperrors.Internal(err)
	}
	if !requester.CanAccess(appointment) {
		return nil, apperrors.Forbidden("Not enough permissions", nil)
	}
	return appointment, nil
}

func (s *Service) invalidateSlots(ctx context.Context, doctorID uuid.UUID) {
	if err := s.cache.Delete(ctx, slotCacheKey(doctorID)); err != nil {
		log.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("failed to invalidate time slot cache")
	}
}

func (s *Service) sendConfirmation(appointment *model.Appointment, doctor *model.Doctor) {
	if s.mailer == nil || appointment.PatientEmail == nil {
		return
	}
	if err := s.mailer.SendBookingConfirmation(
		*appointment.PatientEmail,
		appointment.PatientName,
		doctor.Name,
		appointment.AppointmentTime,
	); err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID.String()).Msg("failed to send confirmation email")
	}
}

func (s *Service) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.WithLabelValues(slotCache).Inc()
		return
	}
	s.metrics.CacheMisses.WithLabelValues(slotCache).Inc()
}

func slotCacheKey(doctorID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", slotCache, doctorID)
}
