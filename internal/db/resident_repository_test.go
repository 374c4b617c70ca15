package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/takahashi-jo/care-emr/internal/models"
	"gorm.io/gorm"
)

func newResidentRepositoryForTest(t *testing.T) (*ResidentRepository, *MedicalRecordRepository) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "care-emr-residents.db")
	database := openSQLiteForTest(t, databasePath)
	return NewResidentRepository(database), NewMedicalRecordRepository(database)
}

func seedResident(t *testing.T, repo *ResidentRepository, resident models.Resident) models.Resident {
	t.Helper()

	if resident.Gender == "" {
		resident.Gender = models.GenderFemale
	}
	if resident.BirthDate.IsZero() {
		resident.BirthDate = time.Date(1940, 5, 1, 0, 0, 0, 0, time.UTC)
	}
	if resident.AdmissionDate.IsZero() {
		resident.AdmissionDate = time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	}
	if resident.Medications == nil {
		resident.Medications = []string{}
	}
	if err := repo.Create(&resident); err != nil {
		t.Fatalf("seed resident %q: %v", resident.Name, err)
	}
	return resident
}

func TestListByNamePrefixMatchesStartsWithOnly(t *testing.T) {
	repo, _ := newResidentRepositoryForTest(t)

	seedResident(t, repo, models.Resident{
		Name:         "田中 花子",
		LastName:     "田中",
		FirstName:    "花子",
		Furigana:     "タナカ ハナコ",
		LastNameKana: "タナカ",
	})
	seedResident(t, repo, models.Resident{
		Name:         "田辺 次郎",
		LastName:     "田辺",
		FirstName:    "次郎",
		Furigana:     "タナベ ジロウ",
		LastNameKana: "タナベ",
	})
	seedResident(t, repo, models.Resident{
		Name:         "山田 太郎",
		LastName:     "山田",
		FirstName:    "太郎",
		Furigana:     "ヤマダ タロウ",
		LastNameKana: "ヤマダ",
	})

	hits, err := repo.ListByNamePrefix("last_name", "田中")
	if err != nil {
		t.Fatalf("ListByNamePrefix: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "田中 花子" {
		t.Fatalf("expected only 田中 花子 for last_name prefix 田中, got %v", residentNames(hits))
	}

	// 田 alone is a prefix of both 田中 and 田辺 but not of 山田; the scan
	// must not behave like a contains match.
	hits, err = repo.ListByNamePrefix("name", "田")
	if err != nil {
		t.Fatalf("ListByNamePrefix: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected two residents for name prefix 田, got %v", residentNames(hits))
	}

	hits, err = repo.ListByNamePrefix("last_name_kana", "タナ")
	if err != nil {
		t.Fatalf("ListByNamePrefix: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected two residents for kana prefix タナ, got %v", residentNames(hits))
	}
}

func TestListByNamePrefixRejectsUnknownColumn(t *testing.T) {
	repo, _ := newResidentRepositoryForTest(t)

	if _, err := repo.ListByNamePrefix("room_number", "101"); err == nil {
		t.Fatal("expected non-name columns to be rejected")
	}
}

func TestUpdateByIDAppliesOnlyGivenColumns(t *testing.T) {
	repo, _ := newResidentRepositoryForTest(t)

	resident := seedResident(t, repo, models.Resident{
		Name:       "田中 花子",
		Furigana:   "タナカ ハナコ",
		RoomNumber: "101",
	})

	if err := repo.UpdateByID(resident.ID, map[string]any{"room_number": "205"}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}

	reloaded, err := repo.FindByID(resident.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.RoomNumber != "205" {
		t.Fatalf("room_number = %q", reloaded.RoomNumber)
	}
	if reloaded.Name != "田中 花子" || reloaded.Furigana != "タナカ ハナコ" {
		t.Fatalf("untouched columns changed: %+v", reloaded)
	}
}

func TestUpdateByIDMissingResident(t *testing.T) {
	repo, _ := newResidentRepositoryForTest(t)

	err := repo.UpdateByID("no-such-id", map[string]any{"room_number": "205"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteWithRecordsRemovesDependentNotes(t *testing.T) {
	residents, records := newResidentRepositoryForTest(t)

	resident := seedResident(t, residents, models.Resident{
		Name:     "田中 花子",
		Furigana: "タナカ ハナコ",
	})
	other := seedResident(t, residents, models.Resident{
		Name:     "山田 太郎",
		Furigana: "ヤマダ タロウ",
	})

	for day := 10; day <= 12; day++ {
		record := models.MedicalRecord{
			ResidentID: resident.ID,
			Date:       time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			Record:     "記録。",
		}
		if err := records.Create(&record); err != nil {
			t.Fatalf("seed record for day %d: %v", day, err)
		}
	}
	otherRecord := models.MedicalRecord{
		ResidentID: other.ID,
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Record:     "別の入居者の記録。",
	}
	if err := records.Create(&otherRecord); err != nil {
		t.Fatalf("seed other record: %v", err)
	}

	if err := residents.DeleteWithRecords(resident.ID); err != nil {
		t.Fatalf("DeleteWithRecords: %v", err)
	}

	if _, err := residents.FindByID(resident.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected resident to be gone, got %v", err)
	}
	orphaned, err := records.ListByResidentID(resident.ID)
	if err != nil {
		t.Fatalf("ListByResidentID: %v", err)
	}
	if len(orphaned) != 0 {
		t.Fatalf("expected dependent records to be gone, got %d", len(orphaned))
	}

	kept, err := records.ListByResidentID(other.ID)
	if err != nil {
		t.Fatalf("ListByResidentID: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected the other resident's record to survive, got %d", len(kept))
	}
}

func TestDeleteWithRecordsMissingResident(t *testing.T) {
	residents, _ := newResidentRepositoryForTest(t)

	if err := residents.DeleteWithRecords("no-such-id"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestListFiltersOrderByName(t *testing.T) {
	repo, _ := newResidentRepositoryForTest(t)

	careLevel := 3
	seedResident(t, repo, models.Resident{Name: "山田 太郎", Furigana: "ヤマダ タロウ", RoomNumber: "101", CareLevel: &careLevel})
	seedResident(t, repo, models.Resident{Name: "佐藤 次郎", Furigana: "サトウ ジロウ", RoomNumber: "101"})
	seedResident(t, repo, models.Resident{Name: "田中 花子", Furigana: "タナカ ハナコ", RoomNumber: "102", CareLevel: &careLevel})

	byRoom, err := repo.ListByRoomNumber("101")
	if err != nil {
		t.Fatalf("ListByRoomNumber: %v", err)
	}
	if names := residentNames(byRoom); len(names) != 2 || names[0] != "佐藤 次郎" {
		t.Fatalf("room filter order = %v", names)
	}

	byCare, err := repo.ListByCareLevel(careLevel)
	if err != nil {
		t.Fatalf("ListByCareLevel: %v", err)
	}
	if len(byCare) != 2 {
		t.Fatalf("care level filter = %v", residentNames(byCare))
	}

	all, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll = %v", residentNames(all))
	}
}

func TestListMedicationCandidatesEscapesLikeMetacharacters(t *testing.T) {
	repo, _ := newResidentRepositoryForTest(t)

	seedResident(t, repo, models.Resident{
		Name:        "田中 花子",
		Furigana:    "タナカ ハナコ",
		Medications: []string{"アムロジピン"},
	})
	seedResident(t, repo, models.Resident{
		Name:        "山田 太郎",
		Furigana:    "ヤマダ タロウ",
		Medications: []string{"薬_A"},
	})

	// A bare underscore is a LIKE wildcard; escaped it must match only the
	// literal medication name.
	hits, err := repo.ListMedicationCandidates("薬_A")
	if err != nil {
		t.Fatalf("ListMedicationCandidates: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "山田 太郎" {
		t.Fatalf("expected only 山田 太郎, got %v", residentNames(hits))
	}

	hits, err = repo.ListMedicationCandidates("アムロ")
	if err != nil {
		t.Fatalf("ListMedicationCandidates: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "田中 花子" {
		t.Fatalf("expected only 田中 花子, got %v", residentNames(hits))
	}
}

func residentNames(residents []models.Resident) []string {
	names := make([]string, 0, len(residents))
	for _, resident := range residents {
		names = append(names, resident.Name)
	}
	return names
}
