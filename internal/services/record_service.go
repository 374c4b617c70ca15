package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/takahashi-jo/care-emr/internal/models"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("medical record not found")

// DateConflictError reports an attempt to give a resident a second note for
// the same calendar day.
type DateConflictError struct {
	ResidentID string
	Date       time.Time
}

func (conflict *DateConflictError) Error() string {
	return fmt.Sprintf("medical record already exists for %s", conflict.Date.Format("2006-01-02"))
}

// RecordInput carries the note form fields.
type RecordInput struct {
	Date   time.Time
	Record string
}

// RecordUpdate carries a partial edit; nil fields are left untouched.
type RecordUpdate struct {
	Date   *time.Time
	Record *string
}

type MedicalRecordStore interface {
	ListByResidentID(residentID string) ([]models.MedicalRecord, error)
	FindByResidentAndDayRange(residentID string, dayStart time.Time, dayEnd time.Time) (models.MedicalRecord, bool, error)
	FindByID(recordID string) (models.MedicalRecord, error)
	Create(record *models.MedicalRecord) error
	UpdateByID(recordID string, updates map[string]any) error
	DeleteByID(recordID string) error
}

type MedicalRecordService struct {
	records  MedicalRecordStore
	location *time.Location
}

func NewMedicalRecordService(records MedicalRecordStore, location *time.Location) *MedicalRecordService {
	if location == nil {
		location = time.UTC
	}
	return &MedicalRecordService{
		records:  records,
		location: location,
	}
}

// GetByResidentID lists a resident's notes, most recent day first. Storage
// failures propagate; the caller decides how "failed to load" differs from
// "no records".
func (service *MedicalRecordService) GetByResidentID(residentID string) ([]models.MedicalRecord, error) {
	return service.records.ListByResidentID(residentID)
}

// CheckExistingRecord returns the note already covering the given calendar
// day, compared at day granularity.
func (service *MedicalRecordService) CheckExistingRecord(residentID string, date time.Time) (models.MedicalRecord, bool, error) {
	dayStart, dayEnd := DayRange(date, service.location)
	return service.records.FindByResidentAndDayRange(residentID, dayStart, dayEnd)
}

// Create inserts a note after checking the one-per-day rule. The check gives
// the caller a message naming the conflicting date; a racing insert that
// slips past it still fails on the unique index and reports the same
// conflict.
func (service *MedicalRecordService) Create(residentID string, input RecordInput) (string, error) {
	day := DateAtLocation(input.Date, service.location)

	_, exists, err := service.CheckExistingRecord(residentID, day)
	if err != nil {
		return "", err
	}
	if exists {
		return "", &DateConflictError{ResidentID: residentID, Date: day}
	}

	record := models.MedicalRecord{
		ResidentID: residentID,
		Date:       day,
		Record:     input.Record,
	}
	if err := service.records.Create(&record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", &DateConflictError{ResidentID: residentID, Date: day}
		}
		return "", err
	}
	return record.ID, nil
}

// Update applies only the present fields. Moving a note onto a day that
// already has one fails with the same conflict create reports.
func (service *MedicalRecordService) Update(recordID string, input RecordUpdate) error {
	updates := map[string]any{}
	var day time.Time
	if input.Date != nil {
		day = DateAtLocation(*input.Date, service.location)
		updates["date"] = day
	}
	if input.Record != nil {
		updates["record"] = *input.Record
	}
	if len(updates) == 0 {
		updates["updated_at"] = time.Now()
	}

	err := service.records.UpdateByID(recordID, updates)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		record, findErr := service.records.FindByID(recordID)
		if findErr != nil {
			return &DateConflictError{Date: day}
		}
		return &DateConflictError{ResidentID: record.ResidentID, Date: day}
	}
	return err
}

func (service *MedicalRecordService) Delete(recordID string) error {
	err := service.records.DeleteByID(recordID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
