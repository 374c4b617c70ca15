package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.LanguageMiddleware)

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	// Every data route requires the admin claim; the store itself has no
	// access policy of its own.
	residents := api.Group("/residents", handler.AuthRequired, handler.AdminRequired)
	residents.Get("", handler.ListResidents)
	residents.Post("", handler.CreateResident)
	residents.Get("/export", handler.ExportResidents)
	residents.Get("/:id", handler.GetResident)
	residents.Put("/:id", handler.UpdateResident)
	residents.Delete("/:id", handler.DeleteResident)
	residents.Get("/:id/records", handler.ListResidentRecords)
	residents.Post("/:id/records", handler.CreateRecord)
	residents.Get("/:id/records/:date/exists", handler.CheckRecordExists)

	records := api.Group("/records", handler.AuthRequired, handler.AdminRequired)
	records.Put("/:id", handler.UpdateRecord)
	records.Delete("/:id", handler.DeleteRecord)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
