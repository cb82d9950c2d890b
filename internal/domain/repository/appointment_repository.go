package repository

import (
	"time"

	"go-clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID int64) ([]entity.Appointment, error)
	FindByDoctorAndDateRange(db *gorm.DB, doctorID int64, from, to time.Time) ([]entity.Appointment, error)
	FindUpcomingByPatientID(db *gorm.DB, patientID int64, now time.Time) ([]entity.Appointment, error)
	FindByDoctorSlot(db *gorm.DB, doctorID int64, from, to time.Time, timeSlot string) (*entity.Appointment, error)
	Confirm(db *gorm.DB, id int64) (int64, error)
}
