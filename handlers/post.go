package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"challenge-service/middleware"
	"challenge-service/services"
	"challenge-service/utils"
	"challenge-service/workers"
)

func SetupPostRoutes(app *fiber.App, postService *services.PostService, moderation *workers.ModerationWorker) {
	// User-context middleware is scoped to the /posts prefix so it never
	// shadows the gateway-only webhook below.
	secured := app.Group("/posts", middleware.UserContextMiddleware())

	secured.Get("/:id", getPost(postService))
	secured.Delete("/:id", deletePost(postService))
	secured.Post("/:id/report", reportPost(postService))
	secured.Post("/:id/comments", addComment(postService))
	secured.Post("/:id/comments/:comment_id/report", reportComment(postService))
	secured.Post("/:id/reactions", react(postService))
	secured.Delete("/:id/reactions", unreact(postService))

	// Proof media upload; the returned URL is what finalize expects.
	app.Post("/media", middleware.UserContextMiddleware(), uploadMedia())

	// Storage callback: second trigger path into the moderation pipeline.
	// Gateway-authenticated only, no user context.
	app.Post("/events/media-uploaded", mediaUploaded(moderation))
}

func getPost(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		post, err := svc.GetPost(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(post)
	}
}

func deletePost(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeletePost(c.Context(), callerID(c), c.Params("id"), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "post deleted"})
	}
}

func reportPost(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.ReportPost(c.Context(), callerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"message": "report recorded"})
	}
}

func addComment(svc *services.PostService) fiber.Handler {
	type Req struct {
		Text string `json:"text"`
	}
	return func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		commentID, err := svc.AddComment(c.Context(), callerID(c), c.Params("id"), req.Text)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"comment_id": commentID})
	}
}

func reportComment(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.ReportComment(c.Context(), callerID(c), c.Params("id"), c.Params("comment_id")); err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"message": "report recorded"})
	}
}

func react(svc *services.PostService) fiber.Handler {
	type Req struct {
		Emoji string `json:"emoji"`
	}
	return func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := svc.React(c.Context(), callerID(c), c.Params("id"), req.Emoji); err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"message": "reaction saved"})
	}
}

func unreact(svc *services.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Unreact(c.Context(), callerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "reaction removed"})
	}
}

func uploadMedia() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil || file.Size == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "file is required"})
		}
		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "posts/" + uuid.NewString() + ext
		url, err := utils.UploadMediaToR2(file, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload media"})
		}
		return c.Status(201).JSON(fiber.Map{"image_url": url})
	}
}

func mediaUploaded(moderation *workers.ModerationWorker) fiber.Handler {
	type Req struct {
		PostID string `json:"post_id"`
	}
	return func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.PostID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "post_id is required"})
		}
		moderation.Enqueue(req.PostID)
		return c.Status(202).JSON(fiber.Map{"message": "scan scheduled"})
	}
}
