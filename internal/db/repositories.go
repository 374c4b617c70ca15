package db

import "gorm.io/gorm"

type Repositories struct {
	Users          *UserRepository
	Residents      *ResidentRepository
	MedicalRecords *MedicalRecordRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(database),
		Residents:      NewResidentRepository(database),
		MedicalRecords: NewMedicalRecordRepository(database),
	}
}
