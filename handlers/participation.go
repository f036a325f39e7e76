package handlers

import (
	"github.com/gofiber/fiber/v2"

	"challenge-service/middleware"
	"challenge-service/services"
)

func SetupParticipationRoutes(app *fiber.App, participationService *services.ParticipationService) {
	secured := app.Group("/participations", middleware.UserContextMiddleware())

	secured.Post("/claim", claimParticipation(participationService))
	secured.Post("/finalize", finalizeParticipation(participationService))
	secured.Post("/cancel", cancelParticipation(participationService))
}

func claimParticipation(svc *services.ParticipationService) fiber.Handler {
	type Req struct {
		ChallengeID string `json:"challenge_id"`
		Type        string `json:"type"`
	}
	return func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		claimID, err := svc.Claim(c.Context(), callerID(c), req.ChallengeID, req.Type)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"claim_id": claimID})
	}
}

func finalizeParticipation(svc *services.ParticipationService) fiber.Handler {
	type Req struct {
		ChallengeID string `json:"challenge_id"`
		ImageURL    string `json:"image_url"`
		Caption     string `json:"caption,omitempty"`
		ClaimID     string `json:"claim_id,omitempty"`
	}
	return func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		postID, err := svc.Finalize(c.Context(), callerID(c), req.ChallengeID, req.ImageURL, req.Caption, req.ClaimID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"post_id": postID})
	}
}

func cancelParticipation(svc *services.ParticipationService) fiber.Handler {
	type Req struct {
		ChallengeID string `json:"challenge_id"`
		ClaimID     string `json:"claim_id"`
	}
	return func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		if err := svc.Cancel(c.Context(), callerID(c), req.ChallengeID, req.ClaimID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "participation cancelled"})
	}
}
