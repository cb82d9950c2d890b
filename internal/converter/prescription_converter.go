package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to its response DTO
func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	response := &dto.PrescriptionResponse{
		ID:         prescription.ID,
		DoctorID:   prescription.DoctorID,
		PatientID:  prescription.PatientID,
		Medication: prescription.Medication,
		Dosage:     prescription.Dosage,
		StartDate:  prescription.StartDate,
		EndDate:    prescription.EndDate,
		Status:     string(prescription.Status),
		CreatedAt:  prescription.CreatedAt,
		UpdatedAt:  prescription.UpdatedAt,
	}

	if prescription.Doctor.ID != 0 {
		response.Doctor = DoctorToResponse(&prescription.Doctor)
	}
	if prescription.Patient.ID != 0 {
		response.Patient = PatientToResponse(&prescription.Patient)
	}

	return response
}

// PrescriptionsToResponses converts a slice of Prescription entities
func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i, prescription := range prescriptions {
		resp := PrescriptionToResponse(&prescription)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
