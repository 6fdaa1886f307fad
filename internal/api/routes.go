package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cafecanastra/conteudo/internal/middleware"
)

// SetupRoutes configures all routes for the application.
func SetupRoutes(app *fiber.App, h *Handlers, adminAPIKey string) {
	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)

	// Public blog read surface
	posts := api.Group("/posts")
	{
		posts.Get("", h.ListPublishedPosts)
		posts.Get("/recent", h.ListRecentPosts)
		posts.Get("/:slug", h.GetPostBySlug)
	}

	// Ingestion entry points called by the external automation service
	webhook := api.Group("/webhook")
	{
		webhook.Post("/posts", h.IngestWebhook)
		webhook.Post("/scheduled", h.IngestScheduled)
	}

	// Admin surface
	admin := api.Group("/admin", middleware.AdminOnly(adminAPIKey))
	{
		admin.Get("/posts", h.ListAllPosts)
		admin.Patch("/posts/:id", h.UpdatePost)
		admin.Delete("/posts/:id", h.DeletePost)
		admin.Post("/posts/:id/image", h.UploadPostImage)

		admin.Get("/schedule", h.GetScheduleConfig)
		admin.Put("/schedule", h.PutScheduleConfig)
		admin.Patch("/schedule", h.PatchScheduleConfig)
	}

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
