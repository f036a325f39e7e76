package handlers

import (
	"github.com/gofiber/fiber/v2"

	"challenge-service/apperr"
)

func callerID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"error": apperr.MessageOf(err),
		"kind":  apperr.KindOf(err).String(),
	})
}
