package entity

import "time"

// Doctor represents a doctor account.
type Doctor struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName       string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:text;not null" json:"-"`
	Specialization string    `gorm:"type:varchar(100);not null;index" json:"specialization"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointments  []Appointment  `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
	Prescriptions []Prescription `gorm:"foreignKey:DoctorID" json:"prescriptions,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// UserType labels for session scoping
const (
	UserTypePatient = "patient"
	UserTypeDoctor  = "doctor"
)
