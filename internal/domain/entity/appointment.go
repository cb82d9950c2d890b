package entity

import "time"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
)

// Appointment represents a requested or confirmed visit between one doctor
// and one patient on a given date and time slot. Requested by the patient,
// confirmed by the owning doctor. Status never moves back from confirmed.
type Appointment struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  int64             `gorm:"not null;index;uniqueIndex:idx_doctor_slot" json:"doctor_id"`
	PatientID int64             `gorm:"not null;index" json:"patient_id"`
	Date      time.Time         `gorm:"not null;index;uniqueIndex:idx_doctor_slot" json:"date"`
	TimeSlot  string            `gorm:"type:varchar(10);not null;uniqueIndex:idx_doctor_slot" json:"time_slot"`
	Reason    string            `gorm:"type:text;not null" json:"reason"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if the appointment is still awaiting doctor confirmation
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsConfirmed checks if the appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// Confirm moves the appointment to its terminal confirmed state
func (a *Appointment) Confirm() {
	a.Status = AppointmentStatusConfirmed
}
