package repository

import (
	"go-clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(db *gorm.DB, prescription *entity.Prescription) error
	FindByID(db *gorm.DB, id int64) (*entity.Prescription, error)
	FindByDoctorID(db *gorm.DB, doctorID int64) ([]entity.Prescription, error)
	FindByPatientID(db *gorm.DB, patientID int64) ([]entity.Prescription, error)
	Confirm(db *gorm.DB, id int64) (int64, error)
}
