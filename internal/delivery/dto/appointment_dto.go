package dto

import "time"

// Request DTOs

// CreateAppointmentRequest books a slot with a doctor. Date accepts
// YYYY-MM-DD or a full RFC 3339 timestamp; TimeSlot is an HH:MM label.
type CreateAppointmentRequest struct {
	DoctorID int64  `json:"doctor_id" validate:"required,min=1"`
	Date     string `json:"date" validate:"required"`
	TimeSlot string `json:"time_slot" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        int64            `json:"id"`
	DoctorID  int64            `json:"doctor_id"`
	PatientID int64            `json:"patient_id"`
	Date      time.Time        `json:"date"`
	TimeSlot  string           `json:"time_slot"`
	Reason    string           `json:"reason"`
	Status    string           `json:"status"`
	Doctor    *DoctorResponse  `json:"doctor,omitempty"`
	Patient   *PatientResponse `json:"patient,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
