package entity

import "time"

// PrescriptionStatus represents the status of a prescription
type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusConfirmed PrescriptionStatus = "confirmed"
)

// Prescription represents a medication order written by a doctor for a
// patient. Role-reversed sibling of Appointment: the doctor creates it,
// the owning patient confirms it. Start and end dates are exact instants,
// not day-normalized.
type Prescription struct {
	ID         int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID   int64              `gorm:"not null;index" json:"doctor_id"`
	PatientID  int64              `gorm:"not null;index" json:"patient_id"`
	Medication string             `gorm:"type:varchar(255);not null" json:"medication"`
	Dosage     string             `gorm:"type:varchar(100);not null" json:"dosage"`
	StartDate  time.Time          `gorm:"not null" json:"start_date"`
	EndDate    time.Time          `gorm:"not null" json:"end_date"`
	Status     PrescriptionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// IsPending checks if the prescription is still awaiting patient confirmation
func (p *Prescription) IsPending() bool {
	return p.Status == PrescriptionStatusPending
}

// IsConfirmed checks if the prescription is confirmed
func (p *Prescription) IsConfirmed() bool {
	return p.Status == PrescriptionStatusConfirmed
}

// Confirm moves the prescription to its terminal confirmed state
func (p *Prescription) Confirm() {
	p.Status = PrescriptionStatusConfirmed
}
