package usecase

import (
	"context"
	"errors"

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
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrPrescriptionNotOwned = errors.New("prescription does not belong to you")
	ErrInvalidDateRange     = errors.New("end date must not be before start date")
)

type PrescriptionUsecase interface {
	CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetMyPrescriptionsAsDoctor(ctx context.Context) (*dto.PrescriptionListResponse, error)
	GetMyPrescriptionsAsPatient(ctx context.Context) (*dto.PrescriptionListResponse, error)
	ConfirmPrescription(ctx context.Context, prescriptionID int64) (*dto.PrescriptionResponse, error)
}

type prescriptionUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	patientRepo      repository.PatientRepository
	auditService     service.AuditService
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:               db,
		log:              log,
		prescriptionRepo: prescriptionRepo,
		patientRepo:      patientRepo,
		auditService:     auditService,
	}
}

// CreatePrescription writes a medication order for a patient on behalf of
// the logged-in doctor. It starts pending until the patient confirms it.
// Start and end dates keep their exact values; prescriptions are
// date-ranged, not day-slotted like appointments.
func (u *prescriptionUsecase) CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	startDate, err := parseDateInput(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	endDate, err := parseDateInput(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	prescription := &entity.Prescription{
		DoctorID:   doctorID,
		PatientID:  req.PatientID,
		Medication: req.Medication,
		Dosage:     req.Dosage,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     entity.PrescriptionStatusPending,
	}

	if err := u.prescriptionRepo.Create(tx, prescription); err != nil {
		u.log.Warnf("Failed to create prescription: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &doctorID, entity.UserTypeDoctor, entity.AuditActionPrescriptionCreate, entity.JSON{
		"prescription_id": prescription.ID,
		"patient_id":      prescription.PatientID,
		"medication":      prescription.Medication,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Prescription created: id=%d, doctor=%d, patient=%d", prescription.ID, doctorID, prescription.PatientID)
	return converter.PrescriptionToResponse(prescription), nil
}

// GetMyPrescriptionsAsDoctor returns every prescription written by the
// logged-in doctor, with patient details.
func (u *prescriptionUsecase) GetMyPrescriptionsAsDoctor(ctx context.Context) (*dto.PrescriptionListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	prescriptions, err := u.prescriptionRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         len(prescriptions),
	}, nil
}

// GetMyPrescriptionsAsPatient returns every prescription written for the
// logged-in patient, with doctor details. Pending and confirmed are both
// returned; the client partitions them.
func (u *prescriptionUsecase) GetMyPrescriptionsAsPatient(ctx context.Context) (*dto.PrescriptionListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	prescriptions, err := u.prescriptionRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for patient %d: %+v", patientID, err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         len(prescriptions),
	}, nil
}

// ConfirmPrescription moves a prescription to confirmed. Only the patient
// it was written for may confirm; confirming twice is a no-op.
func (u *prescriptionUsecase) ConfirmPrescription(ctx context.Context, prescriptionID int64) (*dto.PrescriptionResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	prescription, err := u.prescriptionRepo.FindByID(tx, prescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %d: %+v", prescriptionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	if prescription.PatientID != patientID {
		return nil, ErrPrescriptionNotOwned
	}

	if _, err := u.prescriptionRepo.Confirm(tx, prescriptionID); err != nil {
		u.log.Warnf("Failed to confirm prescription %d: %+v", prescriptionID, err)
		return nil, err
	}
	prescription.Confirm()

	if err := u.auditService.Log(tx, &patientID, entity.UserTypePatient, entity.AuditActionPrescriptionConfirm, entity.JSON{
		"prescription_id": prescription.ID,
		"doctor_id":       prescription.DoctorID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Prescription confirmed: id=%d, patient=%d", prescription.ID, patientID)
	return converter.PrescriptionToResponse(prescription), nil
}
