package repository

import (
	"errors"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor").Preload("Patient").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByDoctorID(db *gorm.DB, doctorID int64) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("id").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindByDoctorAndDateRange matches appointments whose stored timestamp falls
// within [from, to). Callers pass a start-of-day and +24h pair for the
// day-granular doctor view.
func (r *appointmentRepository) FindByDoctorAndDateRange(db *gorm.DB, doctorID int64, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Patient").
		Where("doctor_id = ? AND date >= ? AND date < ?", doctorID, from, to).
		Order("id").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindUpcomingByPatientID returns confirmed future appointments only;
// pending requests are never surfaced to the patient as upcoming.
func (r *appointmentRepository) FindUpcomingByPatientID(db *gorm.DB, patientID int64, now time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Doctor").
		Where("patient_id = ? AND status = ? AND date >= ?", patientID, entity.AppointmentStatusConfirmed, now).
		Order("date ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorSlot(db *gorm.DB, doctorID int64, from, to time.Time, timeSlot string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("doctor_id = ? AND date >= ? AND date < ? AND time_slot = ?", doctorID, from, to, timeSlot).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// Confirm flips the appointment into its terminal state. The write is
// idempotent: reconfirming an already confirmed appointment reissues the
// same update. Returns affected rows: 0 means the id does not exist.
func (r *appointmentRepository) Confirm(db *gorm.DB, id int64) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", entity.AppointmentStatusConfirmed)
	return result.RowsAffected, result.Error
}
