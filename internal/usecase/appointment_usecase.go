package usecase

import (
	"context"
	"errors"
	"time"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentNotOwned = errors.New("appointment does not belong to you")
	ErrSlotTaken           = errors.New("the doctor already has an appointment in this time slot")
	ErrInvalidDateFormat   = errors.New("invalid date format, use YYYY-MM-DD or RFC 3339")
	ErrInvalidTimeSlot     = errors.New("invalid time slot format, use HH:MM")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetMyAppointmentsByDate(ctx context.Context, date string) (*dto.AppointmentListResponse, error)
	GetUpcomingAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	ConfirmAppointment(ctx context.Context, appointmentID int64) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		auditService:    auditService,
	}
}

// CreateAppointment books a slot with a doctor for the logged-in patient.
// The appointment starts pending; only the owning doctor can confirm it.
// A second request for the same doctor, calendar day, and time slot is
// rejected, backed by a unique index on (doctor_id, date, time_slot).
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	date, err := parseDateInput(req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if _, err := time.Parse("15:04", req.TimeSlot); err != nil {
		return nil, ErrInvalidTimeSlot
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	dayStart := startOfDay(date)
	existing, err := u.appointmentRepo.FindByDoctorSlot(tx, req.DoctorID, dayStart, dayStart.Add(24*time.Hour), req.TimeSlot)
	if err != nil {
		u.log.Warnf("Failed to check slot availability: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotTaken
	}

	appointment := &entity.Appointment{
		DoctorID:  req.DoctorID,
		PatientID: patientID,
		Date:      date,
		TimeSlot:  req.TimeSlot,
		Reason:    req.Reason,
		Status:    entity.AppointmentStatusPending,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isDuplicateKeyError(err, "idx_doctor_slot") {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &patientID, entity.UserTypePatient, entity.AuditActionAppointmentCreate, entity.JSON{
		"appointment_id": appointment.ID,
		"doctor_id":      appointment.DoctorID,
		"time_slot":      appointment.TimeSlot,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%d, doctor=%d, patient=%d, slot=%s", appointment.ID, appointment.DoctorID, patientID, appointment.TimeSlot)
	return converter.AppointmentToResponse(appointment), nil
}

// GetMyAppointments returns every appointment for the logged-in doctor,
// with patient details. Clients partition pending vs confirmed themselves.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	appointments, err := u.appointmentRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetMyAppointmentsByDate returns the logged-in doctor's appointments on
// one calendar day. The stored time of day is ignored: anything within
// [start of day, start of day + 24h) matches.
func (u *appointmentUsecase) GetMyAppointmentsByDate(ctx context.Context, date string) (*dto.AppointmentListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	day, err := parseDateInput(date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	dayStart := startOfDay(day)

	appointments, err := u.appointmentRepo.FindByDoctorAndDateRange(u.db.WithContext(ctx), doctorID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %d on %s: %+v", doctorID, date, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetUpcomingAppointments returns confirmed future appointments for the
// logged-in patient, soonest first. Pending requests are deliberately left
// out: an unconfirmed slot is not a guaranteed visit.
func (u *appointmentUsecase) GetUpcomingAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	appointments, err := u.appointmentRepo.FindUpcomingByPatientID(u.db.WithContext(ctx), patientID, time.Now().UTC())
	if err != nil {
		u.log.Warnf("Failed to find upcoming appointments for patient %d: %+v", patientID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// ConfirmAppointment moves an appointment to confirmed. Only the owning
// doctor may confirm; confirming twice is a no-op that leaves the
// appointment confirmed.
func (u *appointmentUsecase) ConfirmAppointment(ctx context.Context, appointmentID int64) (*dto.AppointmentResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if appointment.DoctorID != doctorID {
		return nil, ErrAppointmentNotOwned
	}

	if _, err := u.appointmentRepo.Confirm(tx, appointmentID); err != nil {
		u.log.Warnf("Failed to confirm appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	appointment.Confirm()

	if err := u.auditService.Log(tx, &doctorID, entity.UserTypeDoctor, entity.AuditActionAppointmentConfirm, entity.JSON{
		"appointment_id": appointment.ID,
		"patient_id":     appointment.PatientID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment confirmed: id=%d, doctor=%d", appointment.ID, doctorID)
	return converter.AppointmentToResponse(appointment), nil
}

// parseDateInput accepts either a bare calendar date or a full timestamp.
func parseDateInput(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// startOfDay drops the time component, UTC.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
