package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/takahashi-jo/care-emr/internal/services"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type residentPayload struct {
	Name           string   `json:"name" validate:"required"`
	Furigana       string   `json:"furigana" validate:"required"`
	Gender         string   `json:"gender" validate:"required,oneof=male female"`
	BirthDate      string   `json:"birthDate" validate:"required,datetime=2006-01-02"`
	AdmissionDate  string   `json:"admissionDate" validate:"required,datetime=2006-01-02"`
	DischargeDate  string   `json:"dischargeDate" validate:"omitempty,datetime=2006-01-02"`
	RoomNumber     string   `json:"roomNumber" validate:"omitempty,numeric"`
	CareLevel      *int     `json:"careLevel" validate:"omitempty,min=1,max=5"`
	Medications    []string `json:"medications"`
	MedicalHistory string   `json:"medicalHistory"`
}

type residentUpdatePayload struct {
	Name           *string   `json:"name" validate:"omitempty,min=1"`
	Furigana       *string   `json:"furigana" validate:"omitempty,min=1"`
	Gender         *string   `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate      *string   `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	AdmissionDate  *string   `json:"admissionDate" validate:"omitempty,datetime=2006-01-02"`
	DischargeDate  *string   `json:"dischargeDate" validate:"omitempty,datetime=2006-01-02"`
	RoomNumber     *string   `json:"roomNumber" validate:"omitempty,numeric"`
	CareLevel      *int      `json:"careLevel" validate:"omitempty,min=1,max=5"`
	Medications    *[]string `json:"medications"`
	MedicalHistory *string   `json:"medicalHistory"`
}

// ListResidents dispatches on the query parameter: name search, room or care
// level or medication filter, otherwise the full roster.
func (handler *Handler) ListResidents(c *fiber.Ctx) error {
	if name, provided := queryProvided(c, "name"); provided {
		residents, err := handler.residents.SearchByName(name)
		if err != nil {
			return handler.respondServiceError(c, err, "error.search_failed")
		}
		return c.JSON(residents)
	}
	if room := c.Query("room"); room != "" {
		residents, err := handler.residents.GetByRoomNumber(room)
		if err != nil {
			return handler.respondServiceError(c, err, "error.search_failed")
		}
		return c.JSON(residents)
	}
	if rawLevel := c.Query("careLevel"); rawLevel != "" {
		level, err := strconv.Atoi(rawLevel)
		if err != nil {
			return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
		}
		residents, err := handler.residents.GetByCareLevel(level)
		if err != nil {
			return handler.respondServiceError(c, err, "error.search_failed")
		}
		return c.JSON(residents)
	}
	if medication, provided := queryProvided(c, "medication"); provided {
		residents, err := handler.residents.GetByMedication(medication)
		if err != nil {
			return handler.respondServiceError(c, err, "error.search_failed")
		}
		return c.JSON(residents)
	}

	residents, err := handler.residents.GetAll()
	if err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}
	return c.JSON(residents)
}

func (handler *Handler) GetResident(c *fiber.Ctx) error {
	resident, err := handler.residents.GetByID(c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}
	return c.JSON(resident)
}

func (handler *Handler) CreateResident(c *fiber.Ctx) error {
	payload := residentPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}

	input := services.ResidentInput{
		Name:           payload.Name,
		Furigana:       payload.Furigana,
		Gender:         payload.Gender,
		RoomNumber:     payload.RoomNumber,
		CareLevel:      payload.CareLevel,
		Medications:    dedupeMedications(payload.Medications),
		MedicalHistory: payload.MedicalHistory,
	}
	input.BirthDate = handler.mustParseDate(payload.BirthDate)
	input.AdmissionDate = handler.mustParseDate(payload.AdmissionDate)
	if payload.DischargeDate != "" {
		discharge := handler.mustParseDate(payload.DischargeDate)
		input.DischargeDate = &discharge
	}

	residentID, err := handler.residents.Create(input)
	if err != nil {
		return handler.respondServiceError(c, err, "error.create_failed")
	}

	handler.logger.Info("resident created",
		zap.String("actor_id", actorID(c)),
		zap.String("resident_id", residentID),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": residentID})
}

func (handler *Handler) UpdateResident(c *fiber.Ctx) error {
	payload := residentUpdatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}

	update := services.ResidentUpdate{
		Name:           payload.Name,
		Furigana:       payload.Furigana,
		Gender:         payload.Gender,
		RoomNumber:     payload.RoomNumber,
		CareLevel:      payload.CareLevel,
		MedicalHistory: payload.MedicalHistory,
	}
	if payload.BirthDate != nil {
		birth := handler.mustParseDate(*payload.BirthDate)
		update.BirthDate = &birth
	}
	if payload.AdmissionDate != nil {
		admission := handler.mustParseDate(*payload.AdmissionDate)
		update.AdmissionDate = &admission
	}
	if payload.DischargeDate != nil {
		discharge := handler.mustParseDate(*payload.DischargeDate)
		update.DischargeDate = &discharge
	}
	if payload.Medications != nil {
		deduped := dedupeMedications(*payload.Medications)
		update.Medications = &deduped
	}

	residentID := c.Params("id")
	if err := handler.residents.Update(residentID, update); err != nil {
		return handler.respondServiceError(c, err, "error.update_failed")
	}

	handler.logger.Info("resident updated",
		zap.String("actor_id", actorID(c)),
		zap.String("resident_id", residentID),
	)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) DeleteResident(c *fiber.Ctx) error {
	residentID := c.Params("id")
	if err := handler.residents.Delete(residentID); err != nil {
		return handler.respondServiceError(c, err, "error.delete_failed")
	}

	handler.logger.Info("resident deleted",
		zap.String("actor_id", actorID(c)),
		zap.String("resident_id", residentID),
	)
	return c.SendStatus(fiber.StatusNoContent)
}

// mustParseDate is only called on values the validator already accepted as
// datetime=2006-01-02.
func (handler *Handler) mustParseDate(value string) time.Time {
	parsed, _ := time.ParseInLocation(dateLayout, value, handler.location)
	return parsed
}

// queryProvided distinguishes an empty-valued parameter from an absent one so
// the blank-query short-circuit is observable.
func queryProvided(c *fiber.Ctx, key string) (string, bool) {
	values := c.Queries()
	value, ok := values[key]
	return value, ok
}

func dedupeMedications(medications []string) []string {
	seen := make(map[string]struct{}, len(medications))
	deduped := make([]string, 0, len(medications))
	for _, medication := range medications {
		trimmed := strings.TrimSpace(medication)
		if trimmed == "" {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		deduped = append(deduped, trimmed)
	}
	return deduped
}

func actorID(c *fiber.Ctx) string {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return ""
}
