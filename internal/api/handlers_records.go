package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/takahashi-jo/care-emr/internal/services"
	"go.uber.org/zap"
)

type recordPayload struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Record string `json:"record" validate:"required,min=1"`
}

type recordUpdatePayload struct {
	Date   *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Record *string `json:"record" validate:"omitempty,min=1"`
}

func (handler *Handler) ListResidentRecords(c *fiber.Ctx) error {
	// The resident must exist so a typo'd id reads as 404, not an empty list.
	residentID := c.Params("id")
	if _, err := handler.residents.GetByID(residentID); err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}

	records, err := handler.records.GetByResidentID(residentID)
	if err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}
	return c.JSON(records)
}

// CheckRecordExists reports whether the resident already has a note for the
// given calendar day.
func (handler *Handler) CheckRecordExists(c *fiber.Ctx) error {
	day, err := handler.parseDateParam(c)
	if err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}

	record, exists, err := handler.records.CheckExistingRecord(c.Params("id"), day)
	if err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}
	if !exists {
		return c.JSON(fiber.Map{"exists": false})
	}
	return c.JSON(fiber.Map{"exists": true, "record": record})
}

func (handler *Handler) CreateRecord(c *fiber.Ctx) error {
	payload := recordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}

	residentID := c.Params("id")
	if _, err := handler.residents.GetByID(residentID); err != nil {
		return handler.respondServiceError(c, err, "error.create_failed")
	}

	recordID, err := handler.records.Create(residentID, services.RecordInput{
		Date:   handler.mustParseDate(payload.Date),
		Record: payload.Record,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "error.create_failed")
	}

	handler.logger.Info("medical record created",
		zap.String("actor_id", actorID(c)),
		zap.String("resident_id", residentID),
		zap.String("record_id", recordID),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": recordID})
}

func (handler *Handler) UpdateRecord(c *fiber.Ctx) error {
	payload := recordUpdatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}

	update := services.RecordUpdate{Record: payload.Record}
	if payload.Date != nil {
		day := handler.mustParseDate(*payload.Date)
		update.Date = &day
	}

	recordID := c.Params("id")
	if err := handler.records.Update(recordID, update); err != nil {
		return handler.respondServiceError(c, err, "error.update_failed")
	}

	handler.logger.Info("medical record updated",
		zap.String("actor_id", actorID(c)),
		zap.String("record_id", recordID),
	)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) parseDateParam(c *fiber.Ctx) (time.Time, error) {
	return time.ParseInLocation(dateLayout, c.Params("date"), handler.location)
}

func (handler *Handler) DeleteRecord(c *fiber.Ctx) error {
	recordID := c.Params("id")
	if err := handler.records.Delete(recordID); err != nil {
		return handler.respondServiceError(c, err, "error.delete_failed")
	}

	handler.logger.Info("medical record deleted",
		zap.String("actor_id", actorID(c)),
		zap.String("record_id", recordID),
	)
	return c.SendStatus(fiber.StatusNoContent)
}
