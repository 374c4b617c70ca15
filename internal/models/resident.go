package models

import "time"

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Care levels follow the long-term-care insurance grades.
const (
	CareLevelMin = 1
	CareLevelMax = 5
)

// Resident is one person currently or formerly housed in the facility.
//
// The split name fields are denormalized from Name and Furigana on every write
// that touches them; furigana columns always hold katakana.
type Resident struct {
	Base
	Name           string     `gorm:"not null;index" json:"name"`
	LastName       string     `gorm:"index" json:"lastName"`
	FirstName      string     `gorm:"index" json:"firstName"`
	Furigana       string     `gorm:"not null;index" json:"furigana"`
	LastNameKana   string     `gorm:"index" json:"lastNameKana"`
	FirstNameKana  string     `gorm:"index" json:"firstNameKana"`
	Gender         string     `gorm:"not null" json:"gender"`
	BirthDate      time.Time  `gorm:"type:date;not null" json:"birthDate"`
	AdmissionDate  time.Time  `gorm:"type:date;not null" json:"admissionDate"`
	DischargeDate  *time.Time `gorm:"type:date" json:"dischargeDate,omitempty"`
	RoomNumber     string     `gorm:"index" json:"roomNumber"`
	CareLevel      *int       `json:"careLevel,omitempty"`
	Medications    []string   `gorm:"serializer:json" json:"medications"`
	MedicalHistory string     `json:"medicalHistory"`
}
