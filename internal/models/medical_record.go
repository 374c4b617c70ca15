package models

import "time"

// MedicalRecord is a dated free-text care note tied to exactly one resident.
// The composite unique index keeps the store the arbiter of the
// one-note-per-day rule.
type MedicalRecord struct {
	Base
	ResidentID string    `gorm:"not null;uniqueIndex:uidx_resident_date" json:"residentId"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:uidx_resident_date" json:"date"`
	Record     string    `gorm:"not null" json:"record"`
}
