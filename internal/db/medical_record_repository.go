package db

import (
	"strings"
	"time"

	"github.com/takahashi-jo/care-emr/internal/models"
	"gorm.io/gorm"
)

type MedicalRecordRepository struct {
	database *gorm.DB
}

func NewMedicalRecordRepository(database *gorm.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{database: database}
}

func (repo *MedicalRecordRepository) ListByResidentID(residentID string) ([]models.MedicalRecord, error) {
	records := make([]models.MedicalRecord, 0)
	if err := repo.database.
		Where("resident_id = ?", residentID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByResidentAndDayRange returns the record whose date falls in
// [dayStart, dayEnd), if any.
func (repo *MedicalRecordRepository) FindByResidentAndDayRange(residentID string, dayStart time.Time, dayEnd time.Time) (models.MedicalRecord, bool, error) {
	var record models.MedicalRecord
	result := repo.database.
		Where("resident_id = ? AND date >= ? AND date < ?", residentID, dayStart, dayEnd).
		Order("date DESC, created_at DESC").
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return models.MedicalRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MedicalRecord{}, false, nil
	}
	return record, true, nil
}

func (repo *MedicalRecordRepository) FindByID(recordID string) (models.MedicalRecord, error) {
	var record models.MedicalRecord
	if err := repo.database.Where("id = ?", recordID).First(&record).Error; err != nil {
		return models.MedicalRecord{}, err
	}
	return record, nil
}

// Create inserts the record. The (resident_id, date) unique index is the
// arbiter of the one-note-per-day rule; violations come back as
// gorm.ErrDuplicatedKey.
func (repo *MedicalRecordRepository) Create(record *models.MedicalRecord) error {
	return translateDuplicateKey(repo.database.Create(record).Error)
}

// UpdateByID applies only the given columns. Moving a record onto an occupied
// day fails with gorm.ErrDuplicatedKey, same as Create.
func (repo *MedicalRecordRepository) UpdateByID(recordID string, updates map[string]any) error {
	result := repo.database.Model(&models.MedicalRecord{}).Where("id = ?", recordID).Updates(updates)
	if result.Error != nil {
		return translateDuplicateKey(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *MedicalRecordRepository) DeleteByID(recordID string) error {
	result := repo.database.Where("id = ?", recordID).Delete(&models.MedicalRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// translateDuplicateKey covers driver versions whose errors bypass gorm's
// TranslateError mapping.
func translateDuplicateKey(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return gorm.ErrDuplicatedKey
	}
	return err
}
