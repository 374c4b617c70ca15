package db

import (
	"fmt"

	"github.com/takahashi-jo/care-emr/internal/models"
	"gorm.io/gorm"
)

// prefixSentinel sorts after any realistic input, turning a half-open range
// scan into a starts-with match.
const prefixSentinel = "\uf8ff"

type ResidentRepository struct {
	database *gorm.DB
}

func NewResidentRepository(database *gorm.DB) *ResidentRepository {
	return &ResidentRepository{database: database}
}

func (repo *ResidentRepository) Create(resident *models.Resident) error {
	return repo.database.Create(resident).Error
}

// UpdateByID applies only the given columns. Returns gorm.ErrRecordNotFound
// when no resident has the id.
func (repo *ResidentRepository) UpdateByID(residentID string, updates map[string]any) error {
	result := repo.database.Model(&models.Resident{}).Where("id = ?", residentID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithRecords removes the resident and every medical record that
// references it in one transaction.
func (repo *ResidentRepository) DeleteWithRecords(residentID string) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resident_id = ?", residentID).Delete(&models.MedicalRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", residentID).Delete(&models.Resident{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (repo *ResidentRepository) FindByID(residentID string) (models.Resident, error) {
	var resident models.Resident
	if err := repo.database.Where("id = ?", residentID).First(&resident).Error; err != nil {
		return models.Resident{}, err
	}
	return resident, nil
}

func (repo *ResidentRepository) ListAll() ([]models.Resident, error) {
	residents := make([]models.Resident, 0)
	if err := repo.database.Order("name ASC").Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

func (repo *ResidentRepository) ListByRoomNumber(roomNumber string) ([]models.Resident, error) {
	residents := make([]models.Resident, 0)
	if err := repo.database.Where("room_number = ?", roomNumber).Order("name ASC").Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

func (repo *ResidentRepository) ListByCareLevel(careLevel int) ([]models.Resident, error) {
	residents := make([]models.Resident, 0)
	if err := repo.database.Where("care_level = ?", careLevel).Order("name ASC").Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

// ListMedicationCandidates narrows by a JSON-text containment scan; callers
// must still verify exact membership against the decoded medications list.
func (repo *ResidentRepository) ListMedicationCandidates(drugName string) ([]models.Resident, error) {
	residents := make([]models.Resident, 0)
	pattern := "%" + escapeLike(drugName) + "%"
	if err := repo.database.
		Where("medications LIKE ? ESCAPE '\\'", pattern).
		Order("name ASC").
		Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

// ListByNamePrefix scans the half-open range [prefix, prefix+sentinel) over
// one of the six name columns.
func (repo *ResidentRepository) ListByNamePrefix(column string, prefix string) ([]models.Resident, error) {
	switch column {
	case "name", "last_name", "first_name", "furigana", "last_name_kana", "first_name_kana":
	default:
		return nil, fmt.Errorf("unsupported search column %q", column)
	}

	residents := make([]models.Resident, 0)
	condition := fmt.Sprintf("%s >= ? AND %s < ?", column, column)
	if err := repo.database.
		Where(condition, prefix, prefix+prefixSentinel).
		Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

func escapeLike(value string) string {
	escaped := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, value[i])
	}
	return string(escaped)
}
