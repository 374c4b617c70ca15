package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportResidents streams the full roster as an xlsx workbook.
func (handler *Handler) ExportResidents(c *fiber.Ctx) error {
	workbook, err := handler.export.BuildResidentRoster()
	if err != nil {
		return handler.respondServiceError(c, err, "error.export_failed")
	}

	handler.logger.Info("resident roster exported",
		zap.String("actor_id", actorID(c)),
		zap.Int("bytes", len(workbook)),
	)

	fileName := fmt.Sprintf("residents-%s.xlsx", time.Now().In(handler.location).Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(workbook)
}
