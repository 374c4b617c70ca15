package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/takahashi-jo/care-emr/internal/models"
	"go.uber.org/zap"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func viewOfUser(user *models.User) userView {
	return userView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	payload := loginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}
	if err := handler.validate.Struct(payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.validation")
	}

	user, err := handler.auth.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}

	token, err := handler.issueToken(&user)
	if err != nil {
		return handler.respondServiceError(c, err, "error.fetch_failed")
	}

	handler.logger.Info("staff signed in", zap.String("actor_id", user.ID))
	return c.JSON(fiber.Map{
		"token": token,
		"user":  viewOfUser(&user),
	})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	return c.JSON(viewOfUser(user))
}
