package dto

import "time"

// Request DTOs

// CreatePrescriptionRequest writes a medication order for a patient.
// Dates accept YYYY-MM-DD or a full RFC 3339 timestamp and are stored
// exactly as given, without day normalization.
type CreatePrescriptionRequest struct {
	PatientID  int64  `json:"patient_id" validate:"required,min=1"`
	Medication string `json:"medication" validate:"required"`
	Dosage     string `json:"dosage" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

// Response DTOs

type PrescriptionResponse struct {
	ID         int64            `json:"id"`
	DoctorID   int64            `json:"doctor_id"`
	PatientID  int64            `json:"patient_id"`
	Medication string           `json:"medication"`
	Dosage     string           `json:"dosage"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	Status     string           `json:"status"`
	Doctor     *DoctorResponse  `json:"doctor,omitempty"`
	Patient    *PatientResponse `json:"patient,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
