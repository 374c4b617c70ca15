package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/takahashi-jo/care-emr/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportDateLayout = "2006-01-02"

const exportSheetName = "Residents"

// ExportHeaders are the roster columns, in sheet order.
var ExportHeaders = []string{
	"氏名",
	"フリガナ",
	"性別",
	"生年月日",
	"入所日",
	"退所日",
	"部屋番号",
	"要介護度",
	"服薬",
	"既往歴",
}

type ExportResidentLister interface {
	ListAll() ([]models.Resident, error)
}

type ExportService struct {
	residents ExportResidentLister
}

func NewExportService(residents ExportResidentLister) *ExportService {
	return &ExportService{residents: residents}
}

// BuildResidentRoster renders every resident into an xlsx workbook, ordered
// by full name like the list views.
func (service *ExportService) BuildResidentRoster() ([]byte, error) {
	residents, err := service.residents.ListAll()
	if err != nil {
		return nil, err
	}
	return renderResidentWorkbook(residents)
}

func renderResidentWorkbook(residents []models.Resident) ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	index, err := workbook.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for column, header := range ExportHeaders {
		cell, err := excelize.CoordinatesToCellName(column+1, 1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for rowOffset, resident := range residents {
		row := exportResidentRow(resident)
		for column, value := range row {
			cell, err := excelize.CoordinatesToCellName(column+1, rowOffset+2)
			if err != nil {
				return nil, err
			}
			if err := workbook.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buffer bytes.Buffer
	if _, err := workbook.WriteTo(&buffer); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

func exportResidentRow(resident models.Resident) []any {
	gender := "男性"
	if resident.Gender == models.GenderFemale {
		gender = "女性"
	}

	discharge := ""
	if resident.DischargeDate != nil {
		discharge = resident.DischargeDate.Format(exportDateLayout)
	}

	careLevel := ""
	if resident.CareLevel != nil {
		careLevel = fmt.Sprintf("要介護%d", *resident.CareLevel)
	}

	return []any{
		resident.Name,
		resident.Furigana,
		gender,
		resident.BirthDate.Format(exportDateLayout),
		resident.AdmissionDate.Format(exportDateLayout),
		discharge,
		resident.RoomNumber,
		careLevel,
		strings.Join(resident.Medications, "、"),
		resident.MedicalHistory,
	}
}
