package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to its public summary DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}
	return &dto.DoctorResponse{
		ID:             doctor.ID,
		FullName:       doctor.FullName,
		Email:          doctor.Email,
		Specialization: doctor.Specialization,
	}
}

// DoctorsToResponses converts a slice of Doctor entities
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		responses[i] = *DoctorToResponse(&doctor)
	}
	return responses
}

// PatientToResponse converts a Patient entity to its summary DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}
	return &dto.PatientResponse{
		ID:       patient.ID,
		FullName: patient.FullName,
		Email:    patient.Email,
		Age:      patient.Age,
	}
}

// PatientsToResponses converts a slice of Patient entities
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i, patient := range patients {
		responses[i] = *PatientToResponse(&patient)
	}
	return responses
}

// PatientToUserResponse builds the session profile view of a patient
func PatientToUserResponse(patient *entity.Patient) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        patient.ID,
		FullName:  patient.FullName,
		Email:     patient.Email,
		UserType:  entity.UserTypePatient,
		Age:       patient.Age,
		CreatedAt: patient.CreatedAt,
		UpdatedAt: patient.UpdatedAt,
	}
}

// DoctorToUserResponse builds the session profile view of a doctor
func DoctorToUserResponse(doctor *entity.Doctor) *dto.UserResponse {
	return &dto.UserResponse{
		ID:             doctor.ID,
		FullName:       doctor.FullName,
		Email:          doctor.Email,
		UserType:       entity.UserTypeDoctor,
		Specialization: doctor.Specialization,
		CreatedAt:      doctor.CreatedAt,
		UpdatedAt:      doctor.UpdatedAt,
	}
}
