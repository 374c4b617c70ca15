package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/takahashi-jo/care-emr/internal/kana"
	"github.com/takahashi-jo/care-emr/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrResidentNotFound = errors.New("resident not found")

// Searchable name columns. Each search probe targets one of these.
const (
	columnName          = "name"
	columnLastName      = "last_name"
	columnFirstName     = "first_name"
	columnFurigana      = "furigana"
	columnLastNameKana  = "last_name_kana"
	columnFirstNameKana = "first_name_kana"
)

// ResidentInput carries the registration form fields.
type ResidentInput struct {
	Name           string
	Furigana       string
	Gender         string
	BirthDate      time.Time
	AdmissionDate  time.Time
	DischargeDate  *time.Time
	RoomNumber     string
	CareLevel      *int
	Medications    []string
	MedicalHistory string
}

// ResidentUpdate carries a partial edit; nil fields are left untouched.
type ResidentUpdate struct {
	Name           *string
	Furigana       *string
	Gender         *string
	BirthDate      *time.Time
	AdmissionDate  *time.Time
	DischargeDate  *time.Time
	RoomNumber     *string
	CareLevel      *int
	Medications    *[]string
	MedicalHistory *string
}

type ResidentStore interface {
	Create(resident *models.Resident) error
	UpdateByID(residentID string, updates map[string]any) error
	DeleteWithRecords(residentID string) error
	FindByID(residentID string) (models.Resident, error)
	ListAll() ([]models.Resident, error)
	ListByRoomNumber(roomNumber string) ([]models.Resident, error)
	ListByCareLevel(careLevel int) ([]models.Resident, error)
	ListMedicationCandidates(drugName string) ([]models.Resident, error)
	ListByNamePrefix(column string, prefix string) ([]models.Resident, error)
}

type ResidentService struct {
	residents ResidentStore
	location  *time.Location
}

func NewResidentService(residents ResidentStore, location *time.Location) *ResidentService {
	if location == nil {
		location = time.UTC
	}
	return &ResidentService{
		residents: residents,
		location:  location,
	}
}

// Create registers a resident, deriving the split name fields and storing the
// furigana in katakana. Returns the new identifier.
func (service *ResidentService) Create(input ResidentInput) (string, error) {
	lastName, firstName := SplitName(input.Name)
	furigana := kana.ToKatakana(strings.TrimSpace(input.Furigana))
	lastNameKana, firstNameKana := SplitName(furigana)

	resident := models.Resident{
		Name:           strings.TrimSpace(input.Name),
		LastName:       lastName,
		FirstName:      firstName,
		Furigana:       furigana,
		LastNameKana:   lastNameKana,
		FirstNameKana:  firstNameKana,
		Gender:         input.Gender,
		BirthDate:      DateAtLocation(input.BirthDate, service.location),
		AdmissionDate:  DateAtLocation(input.AdmissionDate, service.location),
		RoomNumber:     input.RoomNumber,
		CareLevel:      input.CareLevel,
		Medications:    input.Medications,
		MedicalHistory: input.MedicalHistory,
	}
	if input.DischargeDate != nil {
		discharge := DateAtLocation(*input.DischargeDate, service.location)
		resident.DischargeDate = &discharge
	}
	if resident.Medications == nil {
		resident.Medications = []string{}
	}

	if err := service.residents.Create(&resident); err != nil {
		return "", err
	}
	return resident.ID, nil
}

// Update applies only the present fields; a name or furigana change re-derives
// the split columns.
func (service *ResidentService) Update(residentID string, input ResidentUpdate) error {
	updates := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		lastName, firstName := SplitName(name)
		updates["name"] = name
		updates["last_name"] = lastName
		updates["first_name"] = firstName
	}
	if input.Furigana != nil {
		furigana := kana.ToKatakana(strings.TrimSpace(*input.Furigana))
		lastNameKana, firstNameKana := SplitName(furigana)
		updates["furigana"] = furigana
		updates["last_name_kana"] = lastNameKana
		updates["first_name_kana"] = firstNameKana
	}
	if input.Gender != nil {
		updates["gender"] = *input.Gender
	}
	if input.BirthDate != nil {
		updates["birth_date"] = DateAtLocation(*input.BirthDate, service.location)
	}
	if input.AdmissionDate != nil {
		updates["admission_date"] = DateAtLocation(*input.AdmissionDate, service.location)
	}
	if input.DischargeDate != nil {
		updates["discharge_date"] = DateAtLocation(*input.DischargeDate, service.location)
	}
	if input.RoomNumber != nil {
		updates["room_number"] = *input.RoomNumber
	}
	if input.CareLevel != nil {
		updates["care_level"] = *input.CareLevel
	}
	if input.Medications != nil {
		updates["medications"] = *input.Medications
	}
	if input.MedicalHistory != nil {
		updates["medical_history"] = *input.MedicalHistory
	}

	if len(updates) == 0 {
		// Still refresh updated_at so an empty edit leaves a trace.
		updates["updated_at"] = time.Now()
	}

	err := service.residents.UpdateByID(residentID, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResidentNotFound
	}
	return err
}

// Delete removes the resident together with its medical records.
func (service *ResidentService) Delete(residentID string) error {
	err := service.residents.DeleteWithRecords(residentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResidentNotFound
	}
	return err
}

func (service *ResidentService) GetByID(residentID string) (models.Resident, error) {
	resident, err := service.residents.FindByID(residentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Resident{}, ErrResidentNotFound
	}
	if err != nil {
		return models.Resident{}, err
	}
	return resident, nil
}

func (service *ResidentService) GetAll() ([]models.Resident, error) {
	return service.residents.ListAll()
}

func (service *ResidentService) GetByRoomNumber(roomNumber string) ([]models.Resident, error) {
	return service.residents.ListByRoomNumber(roomNumber)
}

func (service *ResidentService) GetByCareLevel(careLevel int) ([]models.Resident, error) {
	return service.residents.ListByCareLevel(careLevel)
}

// GetByMedication matches residents whose medication list contains the drug
// name exactly. A blank query short-circuits without touching storage.
func (service *ResidentService) GetByMedication(drugName string) ([]models.Resident, error) {
	trimmed := strings.TrimSpace(drugName)
	if trimmed == "" {
		return []models.Resident{}, nil
	}

	candidates, err := service.residents.ListMedicationCandidates(trimmed)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Resident, 0, len(candidates))
	for _, resident := range candidates {
		for _, medication := range resident.Medications {
			if medication == trimmed {
				matched = append(matched, resident)
				break
			}
		}
	}
	sortResidentsByName(matched)
	return matched, nil
}

// SearchByName fans out six concurrent prefix probes: the raw query against
// the kanji name columns and its katakana form against the furigana columns.
// Any probe failure fails the whole search. The union is deduplicated by id
// and sorted by full name.
func (service *ResidentService) SearchByName(query string) ([]models.Resident, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []models.Resident{}, nil
	}
	kanaQuery := kana.ToKatakana(trimmed)

	probes := []struct {
		column string
		prefix string
	}{
		{columnName, trimmed},
		{columnLastName, trimmed},
		{columnFirstName, trimmed},
		{columnFurigana, kanaQuery},
		{columnLastNameKana, kanaQuery},
		{columnFirstNameKana, kanaQuery},
	}

	hits := make([][]models.Resident, len(probes))
	var group errgroup.Group
	for index, probe := range probes {
		index, probe := index, probe
		group.Go(func() error {
			rows, err := service.residents.ListByNamePrefix(probe.column, probe.prefix)
			if err != nil {
				return err
			}
			hits[index] = rows
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	merged := make([]models.Resident, 0)
	for _, rows := range hits {
		for _, resident := range rows {
			if _, duplicate := seen[resident.ID]; duplicate {
				continue
			}
			seen[resident.ID] = struct{}{}
			merged = append(merged, resident)
		}
	}
	sortResidentsByName(merged)
	return merged, nil
}

func sortResidentsByName(residents []models.Resident) {
	sort.Slice(residents, func(i, j int) bool {
		if residents[i].Name == residents[j].Name {
			return residents[i].ID < residents[j].ID
		}
		return residents[i].Name < residents[j].Name
	})
}
