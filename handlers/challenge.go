package handlers

import (
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"challenge-service/middleware"
	"challenge-service/services"
	"challenge-service/utils"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	// 🔓 Listing is public (still behind gateway auth)
	app.Get("/challenges", listChallenges(challengeService))
	app.Get("/challenges/:id", getChallenge(challengeService))

	// Writes require user context; the reads above stay public, so the
	// middleware is attached per route rather than on the prefix.
	userCtx := middleware.UserContextMiddleware()
	app.Post("/challenges", userCtx, createChallenge(challengeService))
	app.Delete("/challenges/:id", userCtx, deleteChallenge(challengeService))
}

func listChallenges(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		challenges, err := svc.ListActive(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(challenges)
	}
}

func getChallenge(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		challenge, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(challenge)
	}
}

func createChallenge(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := c.FormValue("title")
		description := c.FormValue("description")
		challengeType := c.FormValue("type")
		endDateStr := c.FormValue("end_date")

		var endDate time.Time
		if endDateStr != "" {
			parsed, err := time.Parse(time.RFC3339, endDateStr)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
			}
			endDate = parsed
		}

		// Cover image → R2
		var imageURL string
		if cover, err := c.FormFile("image"); err == nil && cover.Size > 0 {
			ext := filepath.Ext(cover.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			key := "challenges/" + uuid.NewString() + ext
			url, err := utils.UploadMediaToR2(cover, key)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "failed to upload cover image"})
			}
			imageURL = url
		}

		challenge, err := svc.Create(c.Context(), callerID(c), services.CreateChallengeInput{
			Title:       title,
			Description: description,
			Type:        challengeType,
			EndDate:     endDate,
			ImageURL:    imageURL,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(challenge)
	}
}

func deleteChallenge(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !middleware.IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}
		if err := svc.Delete(c.Context(), callerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "challenge deleted"})
	}
}
